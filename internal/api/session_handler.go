package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply-backend-go/internal/session"
)

// SessionHandler exposes session state and refresh for the authenticated
// user.
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetSession handles GET /api/v1/session. The snapshot always carries
// connectivity state, even for an unknown session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessions.Snapshot(uid))
}

// RefreshSession handles POST /api/v1/session/refresh. A failed refresh
// leaves the session expired and signed out.
func (h *SessionHandler) RefreshSession(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	s, exists := h.sessions.Get(uid)
	if !exists {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No session for user"})
		return
	}

	if err := s.RefreshSession(c.Request.Context()); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Session refresh failed",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, h.sessions.Snapshot(uid))
}
