package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type toolkitStub struct {
	mu sync.Mutex

	signUpStatus int
	signUpBody   interface{}

	signInStatus int
	signInBody   interface{}

	tokenStatus int
	tokenBody   interface{}

	tokenCalls int
	oobCalls   int
}

func credentials(uid, email string) map[string]string {
	return map[string]string{
		"localId":      uid,
		"email":        email,
		"idToken":      "id-token-1",
		"refreshToken": "refresh-token-1",
		"expiresIn":    "3600",
	}
}

func toolkitError(message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{"message": message},
	}
}

func newTestClient(t *testing.T, stub *toolkitStub) *Client {
	t.Helper()

	respond := func(w http.ResponseWriter, status int, body interface{}) {
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "accounts:signUp"):
			respond(w, stub.signUpStatus, stub.signUpBody)
		case strings.HasSuffix(r.URL.Path, "accounts:signInWithPassword"):
			respond(w, stub.signInStatus, stub.signInBody)
		case strings.HasSuffix(r.URL.Path, "accounts:sendOobCode"):
			stub.oobCalls++
			respond(w, 0, map[string]string{"email": "ada@example.com"})
		case strings.HasSuffix(r.URL.Path, "/token"):
			stub.tokenCalls++
			respond(w, stub.tokenStatus, stub.tokenBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return NewClient(NewClientConfig{
		APIKey:   "test-api-key",
		BaseURL:  server.URL,
		TokenURL: server.URL,
	}, zap.NewNop())
}

func TestSignUpSuccess(t *testing.T) {
	stub := &toolkitStub{signUpBody: credentials("uid-1", "ada@example.com")}
	client := newTestClient(t, stub)

	ident, err := client.SignUp(context.Background(), "ada@example.com", "Str0ng@pass")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", ident.UID())
	assert.Equal(t, "ada@example.com", ident.Email())

	token, err := ident.Token(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "id-token-1", token)
	assert.Equal(t, 0, stub.tokenCalls, "a fresh token is served without a refresh call")
}

func TestSignUpEmailExists(t *testing.T) {
	stub := &toolkitStub{
		signUpStatus: http.StatusBadRequest,
		signUpBody:   toolkitError("EMAIL_EXISTS"),
	}
	client := newTestClient(t, stub)

	_, err := client.SignUp(context.Background(), "ada@example.com", "Str0ng@pass")
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CodeEmailAlreadyInUse, authErr.Code)
	assert.Equal(t, "This email is already registered. Please sign in or use a different email.", authErr.Message)
}

func TestSignInErrorMapping(t *testing.T) {
	tests := []struct {
		serviceMessage string
		wantCode       string
		wantMessage    string
	}{
		{"EMAIL_NOT_FOUND", CodeUserNotFound, "Invalid email or password."},
		{"INVALID_PASSWORD", CodeWrongPassword, "Invalid email or password."},
		{"INVALID_LOGIN_CREDENTIALS", CodeWrongPassword, "Invalid email or password."},
		{"USER_DISABLED", CodeUserDisabled, "This account has been disabled. Please contact support."},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Try again later.", CodeTooManyRequests, "Too many unsuccessful login attempts. Please try again later."},
		{"SOMETHING_NEW", CodeUnknown, "An error occurred. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.serviceMessage, func(t *testing.T) {
			stub := &toolkitStub{
				signInStatus: http.StatusBadRequest,
				signInBody:   toolkitError(tt.serviceMessage),
			}
			client := newTestClient(t, stub)

			_, err := client.SignIn(context.Background(), "ada@example.com", "wrong")
			var authErr *Error
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantCode, authErr.Code)
			assert.Equal(t, tt.wantMessage, authErr.Message)
		})
	}
}

func TestTokenForceRefresh(t *testing.T) {
	stub := &toolkitStub{
		signInBody: credentials("uid-1", "ada@example.com"),
		tokenBody: map[string]string{
			"id_token":      "id-token-2",
			"refresh_token": "refresh-token-2",
			"expires_in":    "3600",
		},
	}
	client := newTestClient(t, stub)

	ident, err := client.SignIn(context.Background(), "ada@example.com", "Str0ng@pass")
	require.NoError(t, err)

	token, err := ident.Token(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "id-token-2", token)
	assert.Equal(t, 1, stub.tokenCalls)
}

func TestTokenRefreshFailure(t *testing.T) {
	stub := &toolkitStub{
		signInBody:  credentials("uid-1", "ada@example.com"),
		tokenStatus: http.StatusBadRequest,
		tokenBody:   toolkitError("TOKEN_EXPIRED"),
	}
	client := newTestClient(t, stub)

	ident, err := client.SignIn(context.Background(), "ada@example.com", "Str0ng@pass")
	require.NoError(t, err)

	_, err = ident.Token(context.Background(), true)
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CodeUnknown, authErr.Code)
}

func TestSendPasswordReset(t *testing.T) {
	stub := &toolkitStub{}
	client := newTestClient(t, stub)

	require.NoError(t, client.SendPasswordReset(context.Background(), "ada@example.com"))
	assert.Equal(t, 1, stub.oobCalls)
}

func TestSignOutWithoutRevokerIsNoOp(t *testing.T) {
	client := NewClient(NewClientConfig{APIKey: "k"}, zap.NewNop())
	assert.NoError(t, client.SignOut(context.Background(), "uid-1"))
}
