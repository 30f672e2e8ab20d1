package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse mirrors the one in internal/api/dto_models.go to avoid an
// import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SessionToucher records tracked activity for an authenticated uid. The
// session manager satisfies this.
type SessionToucher interface {
	Touch(uid string)
}

// AuthMiddleware verifies Firebase ID tokens on protected routes.
type AuthMiddleware struct {
	authClient *auth.Client
	sessions   SessionToucher
	logger     *zap.Logger
}

// NewAuthMiddleware creates the middleware. The auth client is a hard
// dependency for every protected route.
func NewAuthMiddleware(authClient *auth.Client, sessions SessionToucher, logger *zap.Logger) *AuthMiddleware {
	if authClient == nil {
		panic("AuthMiddleware requires a non-nil Firebase Auth client")
	}
	return &AuthMiddleware{authClient: authClient, sessions: sessions, logger: logger}
}

// VerifyToken validates the Bearer token, stores the uid and token claims in
// the Gin context, and counts the request as session activity.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.authClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("failed to verify ID token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set("userID", token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			c.Set("userEmail", email)
		}

		// Every authenticated request counts as activity for the idle timeout.
		if m.sessions != nil {
			m.sessions.Touch(token.UID)
		}

		c.Next()
	}
}
