package server

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/vatgate/vatgate-api/docs" // This will be generated
	"github.com/vatgate/vatgate-api/internal/auth"
	"github.com/vatgate/vatgate-api/internal/checkout"
	awsclient "github.com/vatgate/vatgate-api/internal/client/aws"
	"github.com/vatgate/vatgate-api/internal/client/shopadmin"
	"github.com/vatgate/vatgate-api/internal/client/vatlayer"
	"github.com/vatgate/vatgate-api/internal/constants"
	"github.com/vatgate/vatgate-api/internal/handlers"
	"github.com/vatgate/vatgate-api/internal/logger"
	"github.com/vatgate/vatgate-api/internal/services"
	"github.com/vatgate/vatgate-api/internal/translate"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handler Definitions
var (
	sessionHandler *handlers.SessionHandler
	persistWorker  *services.PersistWorker
	sessionService *services.SessionService
)

func InitializeHandlers() {
	ctx := context.Background()

	// Secrets Manager is used for the VAT registry key and per-storefront
	// admin tokens, with plain environment variables as the local fallback.
	secrets, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Fatal("Unable to create Secrets Manager client", zap.Error(err))
	}

	vatAccessKey, err := secrets.GetSecretString(ctx, "VATLAYER_API_KEY_ARN", "VATLAYER_API_KEY")
	if err != nil || vatAccessKey == "" {
		logger.Fatal("VATLAYER_API_KEY environment variable or secret is required", zap.Error(err))
	}

	// Initialize the VAT registry client
	vatClient := vatlayer.NewClient(vatAccessKey)

	// Initialize the shop admin client with per-storefront access tokens
	tokenProvider := auth.NewSecretsTokenProvider(secrets)
	adminClient := shopadmin.NewAdminClient(tokenProvider)

	homeCountry := os.Getenv("HOME_COUNTRY_CODE")
	if homeCountry == "" {
		homeCountry = constants.DefaultHomeCountryCode
	}

	engine := checkout.NewEngine(homeCountry, logger.Log)

	// Failed customer writes go to the persistence DLQ when one is configured
	var dlq services.DLQPublisher
	if queueURL := os.Getenv("PERSIST_DLQ_URL"); queueURL != "" {
		publisher, err := awsclient.NewSQSPublisher(ctx, queueURL)
		if err != nil {
			logger.Fatal("Unable to create persistence DLQ publisher", zap.Error(err))
		}
		dlq = publisher
	} else {
		logger.Warn("PERSIST_DLQ_URL not set, failed customer writes will be dropped")
	}

	persistWorker = services.NewPersistWorker(adminClient, dlq, 3, 100)

	sessionService = services.NewSessionService(adminClient, vatClient, engine, persistWorker, logger.Log)

	commonServices := handlers.NewCommonServices(
		sessionService,
		translate.Default(),
		os.Getenv("LOGIN_URL"),
	)

	// API Handler initialization
	sessionHandler = handlers.NewSessionHandler(commonServices)
}

func InitializeRoutes(router *gin.Engine) {
	// Initialize logger first
	logger.InitLogger()

	// Configure and apply CORS middleware
	router.Use(configureCORS())

	// Add Swagger endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Start the persistence workers
	persistWorker.Start()

	// Ensure we gracefully stop the persistence workers when the server shuts down
	router.GET("/shutdown", func(c *gin.Context) {
		go func() {
			time.Sleep(1 * time.Second)
			persistWorker.Stop()
			logger.Info("Server is shutting down...")
			os.Exit(0)
		}()
		c.JSON(http.StatusOK, gin.H{"message": "Server is shutting down..."})
	})

	// if we are not in production, log the request body
	if os.Getenv("GIN_MODE") != "release" {
		router.Use(handlers.LogRequest())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Checkout sessions
		sessions := v1.Group("/checkout/sessions")
		{
			sessions.POST("", sessionHandler.CreateSession)
			sessions.GET("/:session_id", sessionHandler.GetSession)
			sessions.POST("/:session_id/events", sessionHandler.ApplyFieldEvent)
			sessions.POST("/:session_id/advance", sessionHandler.Advance)
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		// Split and trim the origins
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	// Get allowed methods from environment variable
	methodsEnv := os.Getenv("CORS_ALLOWED_METHODS")
	if methodsEnv == "" {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	} else {
		methods := strings.Split(methodsEnv, ",")
		for i, method := range methods {
			methods[i] = strings.TrimSpace(method)
		}
		corsConfig.AllowMethods = methods
	}

	// Get allowed headers from environment variable
	headersEnv := os.Getenv("CORS_ALLOWED_HEADERS")
	if headersEnv == "" {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	} else {
		headers := strings.Split(headersEnv, ",")
		for i, header := range headers {
			headers[i] = strings.TrimSpace(header)
		}
		corsConfig.AllowHeaders = headers
	}

	// Set credentials allowed
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
