package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/pozinox/backend/internal/application/catalog"
	identityapp "github.com/pozinox/backend/internal/application/identity"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	reportapp "github.com/pozinox/backend/internal/application/report"
	tradeapp "github.com/pozinox/backend/internal/application/trade"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/auth"
	"github.com/pozinox/backend/internal/infrastructure/cache"
	"github.com/pozinox/backend/internal/infrastructure/config"
	"github.com/pozinox/backend/internal/infrastructure/event"
	"github.com/pozinox/backend/internal/infrastructure/logger"
	"github.com/pozinox/backend/internal/infrastructure/mail"
	"github.com/pozinox/backend/internal/infrastructure/payment"
	"github.com/pozinox/backend/internal/infrastructure/persistence"
	"github.com/pozinox/backend/internal/infrastructure/printing"
	"github.com/pozinox/backend/internal/infrastructure/scheduler"
	"github.com/pozinox/backend/internal/infrastructure/storage"
	"github.com/pozinox/backend/internal/infrastructure/telemetry"
	"github.com/pozinox/backend/internal/interfaces/http/handler"
	"github.com/pozinox/backend/internal/interfaces/http/middleware"
	"github.com/pozinox/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			Pozinox Storefront API
//	@version		1.0
//	@description	Steel products catalog, quotes, checkout and back office
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@securityDefinitions.apikey	APITokenAuth
//	@in							header
//	@name						X-API-Token

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
		_ = log.Sync()
	}()

	log.Info("Starting Pozinox backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled {
		if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, log).Register(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.MetricsEnabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		PoolStatsInterval:  cfg.Telemetry.DBPoolStatsInterval,
	}, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}
	log.Info("Database connected successfully")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	location, err := time.LoadLocation(cfg.Orders.Timezone)
	if err != nil {
		log.Fatal("Invalid orders.timezone", zap.String("timezone", cfg.Orders.Timezone), zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	codeRepo := persistence.NewGormVerificationCodeRepository(db.DB)
	linkTokenRepo := persistence.NewGormEmailVerificationTokenRepository(db.DB)

	sequenceOpts := []cache.OrderSequenceFactoryOption{cache.WithLogger(log)}
	if redisClient != nil {
		sequenceOpts = append(sequenceOpts, cache.WithRedisClient(redisClient))
	}
	sequence, err := cache.NewOrderSequenceFactory(
		cfg.Orders.SequenceBackend,
		persistence.NewGormOrderSequence(db.DB),
		sequenceOpts...,
	).Create()
	if err != nil {
		log.Fatal("Failed to create order sequence", zap.Error(err))
	}
	orderNumbers := trade.NewOrderNumberGenerator(sequence, trade.WithLocation(location))

	// Adapters
	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(redisClient)
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	var images catalogapp.ImageStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ImageStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Could not ensure image bucket", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		images = s3Storage
	} else {
		log.Warn("Image storage disabled, product image uploads are unavailable")
	}

	var mailer identityapp.Mailer = mail.NewLogSender(log)
	if cfg.Mail.Enabled {
		smtpSender, err := mail.NewSMTPSender(cfg.Mail, cfg.Store.CompanyName, log)
		if err != nil {
			log.Fatal("Failed to initialize mail sender", zap.Error(err))
		}
		mailer = smtpSender
	}

	var gateway tradeapp.PaymentGateway
	sandbox := false
	if cfg.Payment.Enabled {
		mpConfig := &payment.MercadoPagoConfig{
			AccessToken: cfg.Payment.AccessToken,
			BaseURL:     cfg.Payment.BaseURL,
			Timeout:     cfg.Payment.Timeout,
		}
		adapter, err := payment.NewMercadoPagoAdapter(mpConfig, log)
		if err != nil {
			log.Fatal("Failed to initialize Mercado Pago", zap.Error(err))
		}
		gateway = adapter
		sandbox = mpConfig.IsSandbox()
	} else {
		log.Warn("Online payment disabled")
	}

	var quoteRenderer tradeapp.QuoteRenderer
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			RemoteURL:      cfg.Printing.RemoteURL,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
		renderer, err := printing.NewQuoteRenderer(chrome, log)
		if err != nil {
			log.Fatal("Failed to initialize quote renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		quoteRenderer = renderer
	} else {
		log.Warn("PDF export disabled")
	}

	// Application services
	vatPercent := decimal.NewFromFloat(cfg.Store.VATPercent)

	productService := catalogapp.NewProductService(productRepo, categoryRepo, images, catalogapp.ProductServiceConfig{
		DefaultMinimumStock: cfg.Store.MinimumStock,
		FeaturedProducts:    cfg.Store.FeaturedProducts,
		FeaturedCategories:  cfg.Store.FeaturedCategories,
	}, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, log)

	authService := identityapp.NewAuthService(userRepo, jwtService, revocations, customerService, identityapp.AuthServiceConfig{
		EmailVerificationRequired: cfg.Auth.EmailVerificationRequired,
	}, log)
	verificationService := identityapp.NewVerificationService(userRepo, codeRepo, linkTokenRepo, jwtService, mailer,
		identityapp.VerificationServiceConfig{
			PublicURL: cfg.App.PublicURL,
			ProofTTL:  cfg.Auth.EmailProofExpiration,
		}, log)
	apiTokenService := identityapp.NewAPITokenService(userRepo, log)
	userService := identityapp.NewUserService(userRepo, log)
	userService.SetLinkSender(verificationService)
	activityService := identityapp.NewActivityService(activityRepo, log)
	notificationService := identityapp.NewNotificationService(notificationRepo, customerRepo, log)
	authService.SetActivityRecorder(activityService)

	quoteService := tradeapp.NewQuoteService(orderRepo, productRepo, userRepo, customerService, orderNumbers, quoteRenderer,
		tradeapp.QuoteServiceConfig{
			VATPercent:   vatPercent,
			DeliveryDays: cfg.Store.DeliveryDays,
			Location:     location,
			Store: tradeapp.StoreInfo{
				Name:    cfg.Store.CompanyName,
				TaxID:   cfg.Store.CompanyRUT,
				Address: cfg.Store.Address,
				Phone:   cfg.Store.Phone,
				Email:   cfg.Store.Email,
			},
		}, log)
	paymentService := tradeapp.NewPaymentService(orderRepo, customerService, gateway, tradeapp.PaymentServiceConfig{
		ReturnBaseURL:   cfg.App.PublicURL + "/api/v1/quotes",
		NotificationURL: cfg.Payment.NotificationURL,
		CurrencyID:      cfg.Payment.Currency,
		Sandbox:         sandbox,
	}, log)
	orderService := tradeapp.NewOrderService(orderRepo, customerRepo, vatPercent, log)
	dashboardService := reportapp.NewDashboardService(productRepo, categoryRepo, customerRepo, orderRepo, userRepo, log)

	// Domain events feed the activity log and customer notifications
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(activityService)
	eventBus.Subscribe(notificationService)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	log.Info("Event handlers registered",
		zap.Strings("notification_events", notificationService.EventTypes()),
	)

	productService.SetEventPublisher(eventBus)
	categoryService.SetEventPublisher(eventBus)
	customerService.SetEventPublisher(eventBus)
	authService.SetEventPublisher(eventBus)
	verificationService.SetEventPublisher(eventBus)
	userService.SetEventPublisher(eventBus)
	quoteService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)

	storeMetrics, err := telemetry.NewStoreMetrics(meterProvider.Meter("pozinox.store"))
	if err != nil {
		log.Fatal("Failed to create store metrics", zap.Error(err))
	}
	quoteService.SetStoreMetrics(storeMetrics)
	paymentService.SetStoreMetrics(storeMetrics)
	verificationService.SetStoreMetrics(storeMetrics)

	codePurge, err := scheduler.NewIntervalTrigger(scheduler.IntervalTriggerConfig{
		Name:       "verification_code_purge",
		Interval:   cfg.Auth.CodePurgeInterval,
		RunOnStart: true,
		JobTimeout: time.Minute,
	}, func(ctx context.Context) error {
		purged, err := verificationService.PurgeCodes(ctx)
		if err != nil {
			return err
		}
		if purged > 0 {
			log.Info("Purged verification codes", zap.Int64("count", purged))
		}
		return nil
	}, log)
	if err != nil {
		log.Fatal("Failed to create code purge trigger", zap.Error(err))
	}
	if err := codePurge.Start(ctx); err != nil {
		log.Fatal("Failed to start code purge trigger", zap.Error(err))
	}
	defer func() {
		if err := codePurge.Stop(context.Background()); err != nil {
			log.Error("Error stopping code purge trigger", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request ID and tracing first so logs and panics carry them
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.ClientIP())
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	guards := router.Guards{
		JWT: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:  jwtService,
			Revocations: revocations,
			Logger:      log,
		}),
		Superuser: middleware.RequireSuperuserWithConfig(middleware.SuperuserConfig{Logger: log}),
		APIToken:  middleware.APITokenAuth(apiTokenService, log),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthLimit = middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
		guards.SendCodeLimit = middleware.RateLimitByKey(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow),
			middleware.EmailKey)
	}

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks)
	engine.GET("/health", systemHandler.Health)

	handlers := router.Handlers{
		Catalog:        handler.NewCatalogHandler(productService, categoryService),
		Auth:           handler.NewAuthHandler(authService),
		Verification:   handler.NewVerificationHandler(verificationService),
		APIToken:       handler.NewAPITokenHandler(apiTokenService),
		Chatbot:        handler.NewChatbotHandler(authService, quoteService, productService),
		Quote:          handler.NewQuoteHandler(quoteService, paymentService),
		PaymentWebhook: handler.NewPaymentWebhookHandler(paymentService),
		Notification:   handler.NewNotificationHandler(notificationService),
		Product:        handler.NewProductHandler(productService),
		Category:       handler.NewCategoryHandler(categoryService),
		Customer:       handler.NewCustomerHandler(customerService),
		User:           handler.NewUserHandler(userService),
		Order:          handler.NewOrderHandler(orderService),
		Dashboard:      handler.NewDashboardHandler(dashboardService, activityService),
		System:         systemHandler,
	}
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		RegisterGroups(router.StorefrontGroups(handlers, guards)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
