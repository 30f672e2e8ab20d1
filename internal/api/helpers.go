package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply-backend-go/internal/auth"
	"shoply-backend-go/internal/core"
	"shoply-backend-go/internal/persistence"
)

// currentUserID pulls the authenticated uid set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	uid, ok := raw.(string)
	if !ok || uid == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid user ID in context"})
		return "", false
	}
	return uid, true
}

// writeServiceError maps service-layer errors onto HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Validation failed",
			Fields: validationErr.Fields,
		})
		return
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		c.JSON(authStatus(authErr.Code), ErrorResponse{Error: authErr.Message, Details: authErr.Code})
		return
	}

	switch {
	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrPlanNotFound),
		errors.Is(err, core.ErrSubscriptionNotFound),
		errors.Is(err, core.ErrInvoiceNotFound),
		errors.Is(err, core.ErrChatbotNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, persistence.ErrRemoteRead), errors.Is(err, persistence.ErrRemoteWrite):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Upstream data store unavailable", Details: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Details: err.Error()})
	}
}

// authStatus maps auth service error codes to HTTP status codes.
func authStatus(code string) int {
	switch code {
	case auth.CodeEmailAlreadyInUse:
		return http.StatusConflict
	case auth.CodeInvalidEmail, auth.CodeWeakPassword:
		return http.StatusBadRequest
	case auth.CodeUserNotFound, auth.CodeWrongPassword:
		return http.StatusUnauthorized
	case auth.CodeUserDisabled, auth.CodeOperationNotAllowed:
		return http.StatusForbidden
	case auth.CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
