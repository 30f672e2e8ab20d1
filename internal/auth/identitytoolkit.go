package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	defaultSecureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// TokenRevoker invalidates a user's refresh tokens server-side. The Firebase
// Admin auth client satisfies this.
type TokenRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Client talks to the Firebase Identity Toolkit REST API for the
// password-based flows the Admin SDK does not offer.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	tokenURL   string
	revoker    TokenRevoker
	logger     *zap.Logger
}

// NewClientConfig contains options for creating a Client.
type NewClientConfig struct {
	APIKey string
	// Revoker is optional; when nil, SignOut only drops server-side session
	// state and does not revoke refresh tokens.
	Revoker TokenRevoker
	// BaseURL and TokenURL override the Google endpoints. For tests.
	BaseURL  string
	TokenURL string
}

// NewClient creates an Identity Toolkit client.
func NewClient(cfg NewClientConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultIdentityToolkitURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultSecureTokenURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		tokenURL:   tokenURL,
		revoker:    cfg.Revoker,
		logger:     logger,
	}
}

type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// SignUp creates a new account with the given email and password.
func (c *Client) SignUp(ctx context.Context, email, password string) (Identity, error) {
	resp, err := c.credentialCall(ctx, "accounts:signUp", email, password)
	if err != nil {
		return nil, err
	}
	return c.newIdentity(resp), nil
}

// SignIn authenticates an existing account.
func (c *Client) SignIn(ctx context.Context, email, password string) (Identity, error) {
	resp, err := c.credentialCall(ctx, "accounts:signInWithPassword", email, password)
	if err != nil {
		return nil, err
	}
	return c.newIdentity(resp), nil
}

// SendPasswordReset asks the auth service to email a password-reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"requestType": "PASSWORD_RESET", "email": email}
	var out struct{}
	return c.post(ctx, c.baseURL+"/accounts:sendOobCode", body, &out)
}

// SignOut revokes the user's refresh tokens when a revoker is configured.
func (c *Client) SignOut(ctx context.Context, uid string) error {
	if c.revoker == nil {
		return nil
	}
	if err := c.revoker.RevokeRefreshTokens(ctx, uid); err != nil {
		c.logger.Error("failed to revoke refresh tokens", zap.String("uid", uid), zap.Error(err))
		return NewError(CodeUnknown)
	}
	return nil
}

func (c *Client) credentialCall(ctx context.Context, endpoint, email, password string) (*credentialsResponse, error) {
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var resp credentialsResponse
	if err := c.post(ctx, c.baseURL+"/"+endpoint, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, rawURL string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode auth request: %w", err)
	}

	u := rawURL + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("auth service request failed", zap.Error(err))
		return NewError(CodeUnknown)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return NewError(CodeUnknown)
	}
	if httpResp.StatusCode >= 400 {
		return c.decodeError(raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	return nil
}

// decodeError maps an Identity Toolkit error body onto the coded error
// table. Service messages sometimes carry a detail suffix after " : ",
// which is stripped before matching.
func (c *Client) decodeError(raw []byte) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return NewError(CodeUnknown)
	}

	msg := body.Error.Message
	if i := strings.Index(msg, " : "); i >= 0 {
		msg = msg[:i]
	}

	switch msg {
	case "EMAIL_EXISTS":
		return NewError(CodeEmailAlreadyInUse)
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return NewError(CodeInvalidEmail)
	case "OPERATION_NOT_ALLOWED", "PASSWORD_LOGIN_DISABLED":
		return NewError(CodeOperationNotAllowed)
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return NewError(CodeWeakPassword)
	case "USER_DISABLED":
		return NewError(CodeUserDisabled)
	case "EMAIL_NOT_FOUND":
		return NewError(CodeUserNotFound)
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return NewError(CodeWrongPassword)
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return NewError(CodeTooManyRequests)
	default:
		c.logger.Warn("unmapped auth service error", zap.String("message", body.Error.Message))
		return NewError(CodeUnknown)
	}
}

// identity holds the tokens for one authenticated principal.
type identity struct {
	client *Client
	uid    string
	email  string

	mu           sync.Mutex
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

func (c *Client) newIdentity(resp *credentialsResponse) *identity {
	ttl, err := strconv.Atoi(resp.ExpiresIn)
	if err != nil || ttl <= 0 {
		ttl = 3600
	}
	return &identity{
		client:       c,
		uid:          resp.LocalID,
		email:        resp.Email,
		idToken:      resp.IDToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(ttl) * time.Second),
	}
}

func (i *identity) UID() string   { return i.uid }
func (i *identity) Email() string { return i.email }

// Token returns the current id token, exchanging the refresh token against
// the secure token endpoint when forced or expired.
func (i *identity) Token(ctx context.Context, forceRefresh bool) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !forceRefresh && time.Now().Before(i.expiresAt.Add(-time.Minute)) {
		return i.idToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", i.refreshToken)

	u := i.client.tokenURL + "/token?key=" + url.QueryEscape(i.client.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := i.client.httpClient.Do(req)
	if err != nil {
		i.client.logger.Error("token refresh request failed", zap.Error(err))
		return "", NewError(CodeUnknown)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", NewError(CodeUnknown)
	}
	if httpResp.StatusCode >= 400 {
		return "", i.client.decodeError(raw)
	}

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode token refresh response: %w", err)
	}

	ttl, err := strconv.Atoi(resp.ExpiresIn)
	if err != nil || ttl <= 0 {
		ttl = 3600
	}
	i.idToken = resp.IDToken
	if resp.RefreshToken != "" {
		i.refreshToken = resp.RefreshToken
	}
	i.expiresAt = time.Now().Add(time.Duration(ttl) * time.Second)
	return i.idToken, nil
}
