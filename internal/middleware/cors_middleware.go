package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shoply-backend-go/internal/config"
)

// CORSMiddleware allows the web client's origin access to the API. With no
// CLIENT_URL configured, local development origins are allowed.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if appConfig != nil && appConfig.ClientURL != "" {
		origins = []string{appConfig.ClientURL}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
