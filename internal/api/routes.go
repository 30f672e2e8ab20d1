package api

import (
	"net/http"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shoply-backend-go/internal/auth"
	"shoply-backend-go/internal/config"
	"shoply-backend-go/internal/core"
	"shoply-backend-go/internal/db"
	"shoply-backend-go/internal/middleware"
	"shoply-backend-go/internal/session"
)

// SetupRoutes configures all application routes. Global middleware (logging,
// recovery, CORS) is applied to the router in main before this is called.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	authClient *firebaseauth.Client,
	monitor *db.Monitor,
	authService auth.Service,
	sessions *session.Manager,
	userService core.UserService,
	billingService core.BillingService,
	chatbotService core.ChatbotService,
) {
	authMW := middleware.NewAuthMiddleware(authClient, sessions, logger)

	authHandler := NewAuthHandler(authService, userService, sessions, logger)
	sessionHandler := NewSessionHandler(sessions)
	userHandler := NewUserHandler(userService, sessions)
	billingHandler := NewBillingHandler(billingService, logger)
	chatbotHandler := NewChatbotHandler(chatbotService)
	configHandler := NewConfigHandler(appConfig)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/config", configHandler.GetFirebaseConfig)

		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/signin", authHandler.SignIn)
			authGroup.POST("/password-reset", authHandler.SendPasswordReset)
			authGroup.POST("/signout", authMW.VerifyToken(), authHandler.SignOut)
		}

		sessionGroup := apiV1.Group("/session", authMW.VerifyToken())
		{
			sessionGroup.GET("", sessionHandler.GetSession)
			sessionGroup.POST("/refresh", sessionHandler.RefreshSession)
		}

		usersGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			usersGroup.GET("/me", userHandler.GetCurrentUserProfile)
			usersGroup.PUT("/me", userHandler.UpdateCurrentUserProfile)
		}

		// Plans are public: the pricing page renders before sign-up.
		plansGroup := apiV1.Group("/plans")
		{
			plansGroup.GET("", billingHandler.ListPlans)
			plansGroup.GET("/:planId", billingHandler.GetPlan)
		}

		subscriptionsGroup := apiV1.Group("/subscriptions", authMW.VerifyToken())
		{
			subscriptionsGroup.POST("", billingHandler.CreateSubscription)
			subscriptionsGroup.GET("/active", billingHandler.GetActiveSubscription)
			subscriptionsGroup.POST("/:subscriptionId/cancel", billingHandler.CancelSubscription)
		}

		invoicesGroup := apiV1.Group("/invoices", authMW.VerifyToken())
		{
			invoicesGroup.GET("", billingHandler.ListInvoices)
			invoicesGroup.GET("/:invoiceId", billingHandler.GetInvoice)
		}

		chatbotsGroup := apiV1.Group("/chatbots", authMW.VerifyToken())
		{
			chatbotsGroup.POST("", chatbotHandler.CreateChatbot)
			chatbotsGroup.GET("", chatbotHandler.ListChatbots)
			chatbotsGroup.GET("/:chatbotId", chatbotHandler.GetChatbot)
			chatbotsGroup.PUT("/:chatbotId", chatbotHandler.UpdateChatbot)
		}
	}

	// Health carries connectivity state so a load balancer or the client can
	// distinguish "up but offline" from "down".
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":     "UP",
			"isOnline":   monitor.IsOnline(),
			"pendingOps": monitor.PendingCount(),
		}
		if connErr := monitor.ConnectionError(); connErr != "" {
			body["connectionError"] = connErr
		}
		c.JSON(http.StatusOK, body)
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
