package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shoply-backend-go/internal/auth"
	"shoply-backend-go/internal/core"
	"shoply-backend-go/internal/session"
	"shoply-backend-go/internal/validation"
)

// AuthHandler handles the sign-up, sign-in, sign-out and password-reset
// endpoints.
type AuthHandler struct {
	authService auth.Service
	userService core.UserService
	sessions    *session.Manager
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService auth.Service, userService core.UserService, sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		sessions:    sessions,
		logger:      logger,
	}
}

// SignUp handles POST /api/v1/auth/signup. Field validation runs before the
// auth service is called; a failing field never reaches the network.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	errs := validation.ValidateMap(map[string]interface{}{
		"email":    req.Email,
		"password": req.Password,
		"name":     req.Name,
	}, validation.Rules{
		"email":    validation.EmailRule,
		"password": validation.PasswordRule,
		"name":     validation.NameRule,
	})
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: errs})
		return
	}

	ident, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if _, err := h.userService.Create(c.Request.Context(), ident.UID(), req.Email, req.Name); err != nil {
		h.logger.Error("failed to create profile after sign-up", zap.String("uid", ident.UID()), zap.Error(err))
		writeServiceError(c, err)
		return
	}

	if _, err := h.sessions.Create(c.Request.Context(), ident); err != nil {
		writeServiceError(c, err)
		return
	}

	token, err := ident.Token(c.Request.Context(), false)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{UID: ident.UID(), Email: ident.Email(), Token: token})
}

// SignIn handles POST /api/v1/auth/signin. A sign-in whose profile load
// fails is treated as a failed sign-in.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	ident, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if _, err := h.sessions.Create(c.Request.Context(), ident); err != nil {
		h.logger.Warn("sign-in rejected: profile load failed", zap.String("uid", ident.UID()), zap.Error(err))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.MessageForCode(auth.CodeUserNotFound)})
		return
	}

	token, err := ident.Token(c.Request.Context(), false)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{UID: ident.UID(), Email: ident.Email(), Token: token})
}

// SignOut handles POST /api/v1/auth/signout for the authenticated user.
func (h *AuthHandler) SignOut(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	h.sessions.Remove(c.Request.Context(), uid)
	if err := h.authService.SignOut(c.Request.Context(), uid); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendPasswordReset handles POST /api/v1/auth/password-reset. The response
// does not reveal whether the email is registered.
func (h *AuthHandler) SendPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if msg := validation.ValidateField(req.Email, validation.EmailRule); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: map[string]string{"email": msg}})
		return
	}

	if err := h.authService.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) && authErr.Code == auth.CodeUserNotFound {
			c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent."})
			return
		}
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent."})
}
