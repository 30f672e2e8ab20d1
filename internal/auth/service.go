// Package auth is the client for the external authentication service
// (Firebase Identity Toolkit). Coded errors from the service are translated
// to a fixed table of user-facing messages; the session layer never treats
// them as fatal.
package auth

import "context"

// Error codes surfaced to callers. They mirror the Firebase client SDK
// codes so the web frontend can keep its existing handling.
const (
	CodeEmailAlreadyInUse   = "auth/email-already-in-use"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeWeakPassword        = "auth/weak-password"
	CodeUserDisabled        = "auth/user-disabled"
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeUnknown             = "auth/unknown"
)

// Error is a coded authentication error with a user-facing message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error for the given code using the message table.
func NewError(code string) *Error {
	return &Error{Code: code, Message: MessageForCode(code)}
}

// MessageForCode maps an error code to its fixed human-readable message.
func MessageForCode(code string) string {
	switch code {
	case CodeEmailAlreadyInUse:
		return "This email is already registered. Please sign in or use a different email."
	case CodeInvalidEmail:
		return "Please enter a valid email address."
	case CodeOperationNotAllowed:
		return "Email/password accounts are not enabled. Please contact support."
	case CodeWeakPassword:
		return "Please choose a stronger password. It should be at least 6 characters long."
	case CodeUserDisabled:
		return "This account has been disabled. Please contact support."
	case CodeUserNotFound, CodeWrongPassword:
		return "Invalid email or password."
	case CodeTooManyRequests:
		return "Too many unsuccessful login attempts. Please try again later."
	default:
		return "An error occurred. Please try again."
	}
}

// Identity is an authenticated principal owned by the external auth
// service. This system only observes it.
type Identity interface {
	UID() string
	Email() string
	// Token returns a short-lived access token, refreshing it against the
	// auth service when forceRefresh is set or the current one has expired.
	Token(ctx context.Context, forceRefresh bool) (string, error)
}

// Service is the external auth service surface used by this system. Every
// failing call returns an *Error.
type Service interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context, uid string) error
}
