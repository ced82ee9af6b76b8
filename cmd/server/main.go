package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	billingapp "github.com/leasehold/backend/internal/application/billing"
	financeapp "github.com/leasehold/backend/internal/application/finance"
	identityapp "github.com/leasehold/backend/internal/application/identity"
	leasingapp "github.com/leasehold/backend/internal/application/leasing"
	maintenanceapp "github.com/leasehold/backend/internal/application/maintenance"
	"github.com/leasehold/backend/internal/infrastructure/auth"
	"github.com/leasehold/backend/internal/infrastructure/cache"
	"github.com/leasehold/backend/internal/infrastructure/config"
	"github.com/leasehold/backend/internal/infrastructure/gateway"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/notification"
	"github.com/leasehold/backend/internal/infrastructure/persistence"
	"github.com/leasehold/backend/internal/infrastructure/scheduler"
	"github.com/leasehold/backend/internal/interfaces/http/handler"
	"github.com/leasehold/backend/internal/interfaces/http/middleware"
	"github.com/leasehold/backend/internal/interfaces/http/router"
)

//	@title			Leasehold Backend API
//	@version		1.0
//	@description	Property leasing back office - tenants, units, rent billing and maintenance

//	@contact.name	API Support
//	@contact.url	https://github.com/leasehold/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting Leasehold Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
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
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	ticketRepo := persistence.NewGormTicketRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Redis backs the token blacklist and webhook idempotency store. Both
	// fall back to in-memory outside production so a local setup does not
	// need a Redis instance.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var tokenBlacklist auth.TokenBlacklist
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Redis connected successfully")
	}

	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Outbound email for overdue notices and password reset links
	var notifier notification.Notifier = notification.NopNotifier{}
	if cfg.Notification.Enabled {
		smtpNotifier, err := notification.NewSMTPNotifier(cfg.Notification, log)
		if err != nil {
			log.Fatal("Failed to configure SMTP notifier", zap.Error(err))
		}
		notifier = smtpNotifier
		log.Info("SMTP notifier configured", zap.String("host", cfg.Notification.SMTPHost))
	}

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist)
	userService := identityapp.NewUserService(userRepo)

	// Leasing and billing services. The overdue service is shared between
	// the scheduler and tenant list reads so both paths run the same sweep.
	overdueService := billingapp.NewOverdueService(tenantRepo, notifier, log)
	tenantService := leasingapp.NewTenantService(tenantRepo, unitRepo, overdueService)
	unitService := leasingapp.NewUnitService(unitRepo)
	portalAuthService := leasingapp.NewPortalAuthService(tenantRepo, jwtService, notifier, cfg.Portal)
	paymentService := billingapp.NewPaymentService(paymentRepo, tenantRepo)

	var gatewayService *billingapp.GatewayPaymentService
	if cfg.Gateway.SecretKey != "" {
		gatewayAdapter, err := gateway.NewPayMongoAdapter(cfg.Gateway)
		if err != nil {
			log.Fatal("Failed to configure payment gateway", zap.Error(err))
		}
		gatewayService = billingapp.NewGatewayPaymentService(gatewayAdapter, paymentRepo, tenantRepo, idempotencyStore)
		log.Info("Payment gateway configured", zap.String("base_url", cfg.Gateway.BaseURL))
	} else {
		log.Warn("Payment gateway not configured, online payment routes disabled")
	}

	// Maintenance and finance services
	ticketService := maintenanceapp.NewTicketService(ticketRepo, tenantRepo, unitRepo)
	expenseService := financeapp.NewExpenseService(expenseRepo)

	// Scheduled overdue sweep
	if cfg.Sweep.Enabled {
		sweepScheduler, err := scheduler.NewSweepScheduler(cfg.Sweep, overdueService, log)
		if err != nil {
			log.Fatal("Failed to create sweep scheduler", zap.Error(err))
		}
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sweepScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping sweep scheduler", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	tenantHandler := handler.NewTenantHandler(tenantService, portalAuthService)
	unitHandler := handler.NewUnitHandler(unitService)
	paymentHandler := handler.NewPaymentHandler(paymentService, gatewayService)
	portalHandler := handler.NewPortalHandler(portalAuthService, tenantService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

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
	// 2. Tracing - Start the request span
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.App.TracingEnabled,
	}))
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

	// Gateway webhook endpoint (no bearer token; authenticated by signature).
	// Registered directly on the engine so it bypasses the JWT-wrapped API group.
	if gatewayService != nil {
		engine.POST("/api/v1/payments/gateway/webhook", paymentHandler.Webhook)
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes. The default config
	// already skips the public login, refresh and password reset endpoints.
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = tokenBlacklist
	jwtConfig.Logger = log
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Stricter rate limit on credential endpoints to slow brute force attempts
	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authRateLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authLimit = middleware.AuthRateLimit(authRateLimiter)
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	} else {
		authLimit = func(c *gin.Context) { c.Next() }
	}

	requireStaff := middleware.RequireScope(auth.ScopeStaff)
	requirePortal := middleware.RequireScope(auth.ScopePortal)

	// Staff authentication
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authLimit, authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", requireStaff, authHandler.Logout)

	// Staff account administration
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.Use(requireStaff)
	identityRoutes.PUT("/auth/password", authHandler.ChangePassword)
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/:id", userHandler.Get)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)

	// Tenant roster
	tenantRoutes := router.NewDomainGroup("tenants", "/tenants")
	tenantRoutes.Use(requireStaff)
	tenantRoutes.POST("", tenantHandler.Create)
	tenantRoutes.GET("", tenantHandler.List)
	tenantRoutes.GET("/:id", tenantHandler.Get)
	tenantRoutes.PUT("/:id", tenantHandler.Update)
	tenantRoutes.POST("/:id/archive", tenantHandler.Archive)
	tenantRoutes.POST("/:id/unit", tenantHandler.AssignUnit)
	tenantRoutes.DELETE("/:id/unit", tenantHandler.RemoveUnit)
	tenantRoutes.PUT("/:id/portal-password", tenantHandler.SetPortalPassword)

	// Unit inventory
	unitRoutes := router.NewDomainGroup("units", "/units")
	unitRoutes.Use(requireStaff)
	unitRoutes.POST("", unitHandler.Create)
	unitRoutes.GET("", unitHandler.List)
	unitRoutes.GET("/available", unitHandler.ListAvailable)
	unitRoutes.GET("/:id", unitHandler.Get)
	unitRoutes.PUT("/:id", unitHandler.Update)
	unitRoutes.DELETE("/:id", unitHandler.Delete)
	unitRoutes.POST("/:id/maintenance/start", unitHandler.StartMaintenance)
	unitRoutes.POST("/:id/maintenance/complete", unitHandler.CompleteMaintenance)

	// Rent payments
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.Use(requireStaff)
	paymentRoutes.POST("", paymentHandler.Record)
	paymentRoutes.GET("", paymentHandler.List)
	paymentRoutes.GET("/tenant/:tenant_id", paymentHandler.ListByTenant)
	paymentRoutes.GET("/:id", paymentHandler.Get)
	if gatewayService != nil {
		paymentRoutes.POST("/gateway/create-intent", paymentHandler.CreateIntent)
	}

	// Tenant self-service portal. Login and password reset are public;
	// everything else requires a portal-scoped token.
	portalRoutes := router.NewDomainGroup("portal", "/portal")
	portalRoutes.POST("/login", authLimit, portalHandler.Login)
	portalRoutes.POST("/password-reset/request", authLimit, portalHandler.RequestPasswordReset)
	portalRoutes.POST("/password-reset/confirm", authLimit, portalHandler.ConfirmPasswordReset)
	portalRoutes.GET("/me", requirePortal, portalHandler.Me)

	// Maintenance tickets
	ticketRoutes := router.NewDomainGroup("tickets", "/tickets")
	ticketRoutes.Use(requireStaff)
	ticketRoutes.POST("", ticketHandler.Create)
	ticketRoutes.GET("", ticketHandler.List)
	ticketRoutes.GET("/:id", ticketHandler.Get)
	ticketRoutes.POST("/:id/start", ticketHandler.Start)
	ticketRoutes.POST("/:id/resolve", ticketHandler.Resolve)
	ticketRoutes.POST("/:id/cancel", ticketHandler.Cancel)

	// Operating expenses
	expenseRoutes := router.NewDomainGroup("expenses", "/expenses")
	expenseRoutes.Use(requireStaff)
	expenseRoutes.POST("", expenseHandler.Create)
	expenseRoutes.GET("", expenseHandler.List)
	expenseRoutes.GET("/summary", expenseHandler.Summary)
	expenseRoutes.GET("/:id", expenseHandler.Get)
	expenseRoutes.PUT("/:id", expenseHandler.Update)
	expenseRoutes.DELETE("/:id", expenseHandler.Delete)

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(identityRoutes).
		Register(tenantRoutes).
		Register(unitRoutes).
		Register(paymentRoutes).
		Register(portalRoutes).
		Register(ticketRoutes).
		Register(expenseRoutes).
		Register(systemRoutes)

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
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["pool"] = gin.H{
				"open":    stats.OpenConnections,
				"in_use":  stats.InUse,
				"idle":    stats.Idle,
				"waiting": stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
