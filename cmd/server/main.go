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
	appevent "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/event"
	appinv "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/inventory"
	apptrade "github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/application/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/auth"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/cache"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/event"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/payment"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/telemetry"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/handler"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/middleware"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Commerce Order Core API
//	@version		1.0
//	@description	Orders, payments, fulfillment, returns and the inventory ledger

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.FromConfig(cfg.App, cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	// Telemetry comes first so the database plugin and middleware see the
	// global tracer provider
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.Bridge(log, loggerProvider, cfg.Telemetry.ServiceName, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting commerce core",
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbSystem := cfg.Database.Driver
	if dbSystem == "" {
		dbSystem = persistence.DriverPostgres
	}
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, dbSystem, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		sqlDB, err := db.SQL()
		if err != nil {
			log.Fatal("Failed to access connection pool", zap.Error(err))
		}
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("database"), sqlDB, cfg.Telemetry.DBSlowQueryThresh, log)
		if err != nil {
			log.Fatal("Failed to create database metrics", zap.Error(err))
		}
		if err := dbMetrics.Register(db.DB); err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
		defer func() { _ = dbMetrics.Close() }()
	}

	// Postgres schemas are managed by cmd/migrate
	if cfg.Database.Driver == persistence.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
	}

	// Outbox: services write events in their transaction, the processor relays them
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	outboxPublisher := event.NewOutboxPublisher(serializer, event.WithMaxRetries(cfg.Event.MaxRetries))
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	orderNumbers := persistence.NewOrderNumberGenerator(cfg.Order.NumberPrefix, redisClient)
	tradeScope := persistence.NewGormTradeTransactionScope(db.DB, outboxPublisher, orderNumbers, log)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB, outboxPublisher)

	provider, err := payment.NewProvider(payment.GatewayConfig{
		BaseURL: cfg.Payment.GatewayURL,
		APIKey:  cfg.Payment.APIKey,
		Timeout: cfg.Payment.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to configure payment provider", zap.Error(err))
	}

	settings := apptrade.Settings{
		AutoConfirmOnPayment: cfg.Order.AutoConfirmOnPayment,
		MaxRetries:           cfg.Order.MaxRetries,
		PaymentTimeout:       cfg.Payment.Timeout,
	}
	taxes := trade.NewFlatRateTaxCalculator(cfg.Tax.DefaultRate)

	checkoutService := apptrade.NewCheckoutService(tradeScope, taxes, settings, log)
	if len(cfg.Shipping.Rates) > 0 {
		checkoutService.SetShippingRateProvider(trade.NewFlatShippingRates(cfg.Shipping.Rates))
		log.Info("Shipping rates configured", zap.Int("services", len(cfg.Shipping.Rates)))
	}
	orderService := apptrade.NewOrderService(tradeScope, settings, log)
	paymentService := apptrade.NewPaymentService(tradeScope, provider, settings, log)
	refundService := apptrade.NewRefundService(tradeScope, provider, settings, log)
	fulfillmentService := apptrade.NewFulfillmentService(tradeScope, settings, log)
	returnService := apptrade.NewReturnService(tradeScope, provider, settings, log)
	claimService := apptrade.NewClaimService(tradeScope, provider, settings, log)
	exchangeService := apptrade.NewExchangeService(tradeScope, provider, settings, log)
	editService := apptrade.NewOrderEditService(tradeScope, settings, log)
	inventoryService := appinv.NewInventoryService(inventoryScope, log)
	outboxService := appevent.NewOutboxService(outboxRepo, log)

	commerceMetrics, err := telemetry.NewCommerceMetrics(telemetry.CommerceMetricsConfig{
		Meter:     meterProvider.Meter("commerce"),
		Logger:    log,
		Outbox:    outboxRepo,
		Inventory: telemetry.NewGormInventoryStatsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create commerce metrics", zap.Error(err))
	}
	defer func() { _ = commerceMetrics.Close() }()

	// Subscribers see every event at least once; the idempotency store drops redeliveries
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx, redisClient)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	eventBus := event.NewInMemoryEventBus(log)
	subscribers := event.WrapHandlersWithIdempotency([]shared.EventHandler{
		apptrade.NewOrderCancelledHandler(commerceMetrics, log),
		apptrade.NewPaymentCapturedHandler(commerceMetrics, log),
		appinv.NewStockBelowThresholdHandler(cfg.Inventory.LowStockThreshold, log).
			WithNotifier(appinv.NewLoggingStockAlertNotifier(log)),
		telemetry.NewEventMetricsHandler(commerceMetrics),
	}, idempotencyStore, log, event.WithIdempotencyConfig(shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: true,
	}))
	for _, h := range subscribers {
		eventBus.Subscribe(h)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorConfig, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}

	handlers := router.Handlers{
		Checkout:    handler.NewCheckoutHandler(checkoutService),
		Order:       handler.NewOrderHandler(orderService),
		Payment:     handler.NewPaymentHandler(paymentService, refundService),
		Fulfillment: handler.NewFulfillmentHandler(fulfillmentService),
		Return:      handler.NewReturnHandler(returnService),
		Claim:       handler.NewClaimHandler(claimService),
		Exchange:    handler.NewExchangeHandler(exchangeService),
		OrderEdit:   handler.NewOrderEditHandler(editService),
		Inventory:   handler.NewInventoryHandler(inventoryService),
		Outbox:      handler.NewOutboxHandler(outboxService),
		System:      handler.NewSystemHandler(cfg.App.Name, version, db),
	}

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

	// request id and logger wrap everything; tracing precedes metrics
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	})...)
	engine.Use(middleware.HTTPMetrics(meterProvider.Meter("http.server"), log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	}

	router.RegisterProbes(engine, handlers.System)

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	var limiter middleware.RateLimiter = middleware.NewMemoryRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient, "")
		limiter = middleware.NewRedisRateLimiter(redisClient, "", cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
	}

	api := router.NewRouter(engine, router.WithAPIVersion("v1"))
	api.Use(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     auth.NewJWTService(cfg.JWT),
			TokenBlacklist: blacklist,
			SkipPaths:      []string{api.BasePath() + "/system/info"},
			Logger:         log,
		}),
		middleware.RateLimit(limiter, log),
		middleware.Profiling(profiler.IsEnabled()),
	)
	api.Register(router.CommerceRoutes(handlers, middleware.AdminAccess(middleware.AdminAccessConfig{
		Enabled:    cfg.HTTP.AdminEnabled,
		AllowedIPs: cfg.HTTP.AdminAllowedIPs,
		Logger:     log,
	}))...)
	api.Setup()

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
	}

	// Flush telemetry last so the shutdown itself is recorded
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
