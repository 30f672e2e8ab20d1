package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shoply-backend-go/internal/api"
	"shoply-backend-go/internal/auth"
	"shoply-backend-go/internal/cache"
	"shoply-backend-go/internal/config"
	"shoply-backend-go/internal/core"
	"shoply-backend-go/internal/db"
	"shoply-backend-go/internal/middleware"
	"shoply-backend-go/internal/persistence"
	"shoply-backend-go/internal/session"
)

const connectivityProbeInterval = 10 * time.Second

func main() {
	seedPlans := flag.Bool("seed", false, "seed the default pricing plans and exit")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded")

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	clients, err := db.NewClients(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()
	zapLogger.Info("Firebase Admin SDK initialized", zap.String("projectID", appConfig.FirebaseProjectID))

	store := db.NewFirestoreStore(clients.Firestore, zapLogger)
	monitor := db.NewMonitor(store, db.DefaultRetryConfig(), zapLogger)

	var cacheStore cache.Store
	switch appConfig.CacheBackend {
	case "redis":
		redisStore, err := cache.NewRedisStore(initCtx, cache.NewRedisStoreConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis cache", zap.Error(err))
		}
		cacheStore = redisStore
		zapLogger.Info("Redis cache backend initialized", zap.String("address", appConfig.RedisAddress))
	default:
		cacheStore = cache.NewMemoryStore()
		zapLogger.Info("In-memory cache backend initialized")
	}

	persistenceManager := persistence.NewManager(store, monitor, cacheStore, appConfig.CacheTTL, zapLogger)

	if *seedPlans {
		if err := core.SeedPlans(initCtx, persistenceManager, zapLogger); err != nil {
			zapLogger.Fatal("Failed to seed plans", zap.Error(err))
		}
		zapLogger.Info("Plan seeding complete")
		return
	}

	authService := auth.NewClient(auth.NewClientConfig{
		APIKey:  appConfig.FirebaseAPIKey,
		Revoker: clients.Auth,
	}, zapLogger)

	userService := core.NewUserService(persistenceManager, zapLogger)
	billingService := core.NewBillingService(persistenceManager, zapLogger)
	chatbotService := core.NewChatbotService(persistenceManager, zapLogger)

	sessionManager := session.NewManager(appConfig.SessionTimeout, userService.GetByID, authService, zapLogger)
	monitor.OnStatusChange(sessionManager.SetConnectivity)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go monitor.Watch(watchCtx, connectivityProbeInterval)

	gin.SetMode(appConfig.GinMode)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		clients.Auth,
		monitor,
		authService,
		sessionManager,
		userService,
		billingService,
		chatbotService,
	)

	server := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", appConfig.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
