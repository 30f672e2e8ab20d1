package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply-backend-go/internal/config"
)

// ConfigHandler exposes the public client configuration.
type ConfigHandler struct {
	appConfig *config.Config
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(appConfig *config.Config) *ConfigHandler {
	return &ConfigHandler{appConfig: appConfig}
}

// GetFirebaseConfig handles GET /api/v1/config. The web client needs these
// identifiers to initialize its SDK; none of them is a secret.
func (h *ConfigHandler) GetFirebaseConfig(c *gin.Context) {
	c.JSON(http.StatusOK, FirebaseConfigResponse{
		APIKey:            h.appConfig.FirebaseAPIKey,
		AuthDomain:        h.appConfig.FirebaseAuthDomain,
		ProjectID:         h.appConfig.FirebaseProjectID,
		StorageBucket:     h.appConfig.FirebaseStorageBucket,
		MessagingSenderID: h.appConfig.FirebaseMessagingSenderID,
		AppID:             h.appConfig.FirebaseAppID,
	})
}
