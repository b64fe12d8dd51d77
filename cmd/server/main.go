package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	estimateapp "github.com/tierquote/backend/internal/application/estimate"
	followupapp "github.com/tierquote/backend/internal/application/followup"
	identityapp "github.com/tierquote/backend/internal/application/identity"
	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	quoteapp "github.com/tierquote/backend/internal/application/quote"
	"github.com/tierquote/backend/internal/infrastructure/auth"
	"github.com/tierquote/backend/internal/infrastructure/cache"
	"github.com/tierquote/backend/internal/infrastructure/config"
	"github.com/tierquote/backend/internal/infrastructure/document"
	"github.com/tierquote/backend/internal/infrastructure/fieldservice"
	"github.com/tierquote/backend/internal/infrastructure/logger"
	"github.com/tierquote/backend/internal/infrastructure/mail"
	"github.com/tierquote/backend/internal/infrastructure/persistence"
	"github.com/tierquote/backend/internal/infrastructure/storage"
	"github.com/tierquote/backend/internal/interfaces/http/handler"
	"github.com/tierquote/backend/internal/interfaces/http/middleware"
	"github.com/tierquote/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting TierQuote Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	estimateRepo := persistence.NewGormEstimateRepository(db.DB)
	planRepo := persistence.NewGormFinancingPlanRepository(db.DB)
	followUpRepo := persistence.NewGormFollowUpRepository(db.DB)
	engagementRepo := persistence.NewGormEngagementRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	settingsRepo := persistence.NewGormCompanySettingsRepository(db.DB)

	// Session store: Redis when configured, process-local otherwise
	var sessions proposalapp.SessionStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisSessionStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		sessions = redisStore
		log.Info("Redis session store connected", zap.String("host", cfg.Redis.Host))
	} else {
		sessions = cache.NewInMemorySessionStore()
		log.Warn("Redis not configured, using in-memory session store")
	}

	// Document store: S3 when a bucket is configured, in-memory stub otherwise
	var store proposalapp.DocumentStore
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3DocumentStore(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 document store", zap.Error(err))
		}
		store = s3Store
		log.Info("S3 document store initialized", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		store = storage.NewStubDocumentStore()
		log.Warn("Storage bucket not configured, using stub document store")
	}

	// Document rendering
	renderer := document.NewChromedpRenderer(&document.ChromedpConfig{
		Timeout:   cfg.Document.RendererTimeout,
		NoSandbox: true,
		Logger:    log,
	})
	generator := document.NewGenerator(renderer, log)

	// Field-service writeback client
	var fieldClient proposalapp.FieldServiceClient
	if cfg.FieldService.BaseURL != "" {
		client, err := fieldservice.NewClient(&cfg.FieldService, log)
		if err != nil {
			log.Fatal("Failed to initialize field service client", zap.Error(err))
		}
		fieldClient = client
		log.Info("Field service client initialized", zap.String("base_url", cfg.FieldService.BaseURL))
	} else {
		fieldClient = fieldservice.NewDisabledClient(log)
		log.Warn("Field service not configured, writebacks disabled")
	}

	// Transactional mail
	var emailSender proposalapp.EmailSender
	if cfg.Mail.Host != "" {
		sender, err := mail.NewSMTPSender(&cfg.Mail, log)
		if err != nil {
			log.Fatal("Failed to initialize SMTP sender", zap.Error(err))
		}
		emailSender = sender
		log.Info("SMTP sender initialized", zap.String("host", cfg.Mail.Host))
	} else {
		emailSender = mail.NewNopSender(log)
		log.Warn("Mail not configured, confirmation emails disabled")
	}

	// Initialize application services
	viewService := proposalapp.NewViewService(estimateRepo, planRepo, settingsRepo, log)
	acceptanceService := proposalapp.NewAcceptanceService(estimateRepo, planRepo, generator, store, settingsRepo, log)
	engagementService := proposalapp.NewEngagementService(estimateRepo, engagementRepo, sessions, log)
	quoteService := quoteapp.NewService(planRepo, log)
	estimateService := estimateapp.NewService(estimateRepo, log)
	retirementService := followupapp.NewRetirementService(followUpRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)

	// Post-acceptance fan-out
	fanoutRunner := proposalapp.NewFanoutRunner(
		engagementRepo,
		notificationRepo,
		userRepo,
		fieldClient,
		emailSender,
		retirementService,
		log,
	)
	fanoutRunner.SetConfig(proposalapp.FanoutRunnerConfig{
		StrictSync:  cfg.FieldService.StrictSync,
		TaskTimeout: cfg.Fanout.TaskTimeout,
	})

	// Initialize HTTP handlers
	proposalHandler := handler.NewProposalHandler(viewService, acceptanceService, engagementService, fanoutRunner)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	estimateHandler := handler.NewEstimateHandler(estimateService, engagementService)
	authHandler := handler.NewAuthHandler(authService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes. The proposal
	// surface authenticates by opaque token, not by JWT, so it is skipped
	// as a prefix.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/proposals",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// The accept endpoint gets a stricter limiter keyed by token so one
	// proposal's traffic cannot starve the rest of the public surface.
	acceptLimiter := middleware.NewRateLimiter(10, time.Minute)
	acceptRateLimit := middleware.RateLimitByKey(acceptLimiter, func(c *gin.Context) string {
		return "accept:" + c.Param("token")
	})

	// Register domain route groups
	r.Register(router.ProposalRoutes(proposalHandler, acceptRateLimit)).
		Register(router.QuoteRoutes(quoteHandler)).
		Register(router.EstimateRoutes(estimateHandler)).
		Register(router.AuthRoutes(authHandler)).
		Register(router.SystemRoutes(systemHandler))

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
