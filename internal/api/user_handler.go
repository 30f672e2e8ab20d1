package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply-backend-go/internal/core"
	"shoply-backend-go/internal/session"
)

// UserHandler handles the profile endpoints for the authenticated user.
type UserHandler struct {
	userService core.UserService
	sessions    *session.Manager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService core.UserService, sessions *session.Manager) *UserHandler {
	return &UserHandler{userService: userService, sessions: sessions}
}

// GetCurrentUserProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUserProfile handles PUT /api/v1/users/me. The session's
// mirrored profile is updated to match.
func (h *UserHandler) UpdateCurrentUserProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), uid, updates)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if s, exists := h.sessions.Get(uid); exists {
		s.SetProfile(user)
	}
	c.JSON(http.StatusOK, user)
}
