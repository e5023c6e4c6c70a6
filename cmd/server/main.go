package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/ecomstore/backend/internal/application/cart"
	catalogapp "github.com/ecomstore/backend/internal/application/catalog"
	appevent "github.com/ecomstore/backend/internal/application/event"
	identityapp "github.com/ecomstore/backend/internal/application/identity"
	orderapp "github.com/ecomstore/backend/internal/application/order"
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/ecomstore/backend/internal/infrastructure/auth"
	"github.com/ecomstore/backend/internal/infrastructure/cache"
	"github.com/ecomstore/backend/internal/infrastructure/config"
	"github.com/ecomstore/backend/internal/infrastructure/event"
	"github.com/ecomstore/backend/internal/infrastructure/logger"
	"github.com/ecomstore/backend/internal/infrastructure/persistence"
	"github.com/ecomstore/backend/internal/infrastructure/printing"
	"github.com/ecomstore/backend/internal/infrastructure/storage"
	"github.com/ecomstore/backend/internal/infrastructure/telemetry"
	"github.com/ecomstore/backend/internal/interfaces/http/handler"
	"github.com/ecomstore/backend/internal/interfaces/http/middleware"
	"github.com/ecomstore/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/ecomstore/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			EcomStore API
//	@version		1.0
//	@description	Storefront backend: catalog, accounts, carts and orders.

//	@contact.name	API Support
//	@contact.url	https://github.com/ecomstore/backend

//	@license.name	MIT

//	@host		localhost:5000
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

	// Prices and totals are serialized as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// The OTLP log bridge must exist before the logger so it can be teed in
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, cfg.Telemetry.LogsEnabled, zap.NewNop())
	if err != nil {
		panic("Failed to initialize OTLP logs: " + err.Error())
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.Core(level))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting EcomStore backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Profiling starts first so span profiles can attach to the tracer
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, cfg.Telemetry.MetricsEnabled,
		cfg.Telemetry.MetricsExportInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer shutdownTelemetry(log, profiler, tracerProvider, meterProvider, logProvider)

	// Database
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
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
		log.Info("Database schema auto-migrated")
	}

	dbTracing := telemetry.NewDBTracing(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		reg, err := telemetry.RegisterDBPoolMetrics(meterProvider.Meter("ecomstore/db"), sqlDB)
		if err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		} else {
			defer func() { _ = reg.Unregister() }()
		}
	}

	// Redis is optional; without it every shared store falls back to memory
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var (
		cacheFactory *cache.Factory
		blacklist    auth.TokenBlacklist
	)
	if redisClient != nil {
		cacheFactory = cache.NewFactory(redisClient, cache.WithLogger(log))
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		cacheFactory = cache.NewFactory(nil, cache.WithLogger(log))
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis disabled, logged-out tokens are only revoked on this instance")
	}
	idempotencyStore := cacheFactory.IdempotencyStore()
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Object storage for product images
	imageStorage, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	// Invoice rendering; PDF output needs Chrome
	invoiceOpts := []printing.InvoiceOption{
		printing.WithStoreName(cfg.App.Name),
		printing.WithLogger(log),
	}
	if cfg.Printing.Enabled {
		pdf, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			RemoteURL:      cfg.Printing.ChromeRemoteURL,
			DefaultTimeout: cfg.Printing.Timeout,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		invoiceOpts = append(invoiceOpts, printing.WithPDFRenderer(pdf))
	}
	invoices, err := printing.NewInvoiceRenderer(invoiceOpts...)
	if err != nil {
		log.Fatal("Failed to initialize invoice renderer", zap.Error(err))
	}
	defer func() {
		if err := invoices.Close(); err != nil {
			log.Error("Error closing invoice renderer", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)

	featuredCache := catalogapp.NewFeaturedCache(cacheFactory.Store("catalog:"),
		catalogapp.WithFeaturedTTL(cfg.Cache.FeaturedTTL),
		catalogapp.WithFeaturedLogger(log),
	)
	productService := catalogapp.NewProductService(productRepo, userRepo, featuredCache)
	imageService := catalogapp.NewImageService(imageStorage, catalogapp.ImageServiceConfig{
		MaxSize:         cfg.Storage.MaxUploadSize,
		PublicURLPrefix: "/api/" + cfg.App.APIVersion + "/uploads/",
		DownloadExpiry:  cfg.Storage.PresignExpiry,
	})
	cartService := cartapp.NewCartService(cartRepo, productRepo)

	idempotencyCfg := shared.DefaultIdempotencyConfig()
	if cfg.Cache.IdempotencyTTL > 0 {
		idempotencyCfg.TTL = cfg.Cache.IdempotencyTTL
	}
	orderService := orderapp.NewOrderService(orderapp.Repositories{
		Orders:   orderRepo,
		Products: productRepo,
		Users:    userRepo,
		Carts:    cartRepo,
	}, uow,
		orderapp.WithIdempotency(idempotencyStore, idempotencyCfg),
		orderapp.WithInvoiceRenderer(invoices),
		orderapp.WithLogger(log),
	)

	// Event bus and cross-context handlers
	prom := telemetry.NewPrometheus()
	eventBus := event.NewInMemoryEventBus(log)

	featuredInvalidator := appevent.NewFeaturedCacheInvalidator(featuredCache, log)
	eventBus.Subscribe(featuredInvalidator)
	orderMetricsHandler := appevent.NewOrderMetricsHandler(prom, log)
	eventBus.Subscribe(orderMetricsHandler)

	log.Info("Event handlers registered",
		zap.Strings("featured_cache_events", featuredInvalidator.EventTypes()),
		zap.Strings("order_metrics_events", orderMetricsHandler.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	authService.SetEventPublisher(eventBus)
	productService.SetEventPublisher(eventBus)
	productService.SetLogger(log)
	orderService.SetEventPublisher(eventBus)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID so every later log line and error carries it
	// 2. Tracing + SpanEnricher open the request span
	// 3. Logger and Recovery log inside the span
	// 4. Metrics observe the final status
	// 5. Security headers, CORS, body limit, rate limit, timeout
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
		Filter: func(r *http.Request) bool {
			return r.URL.Path != "/api/health" && r.URL.Path != "/metrics"
		},
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Metrics(prom, "/metrics", "/api/health"))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize,
		middleware.UploadLimit("/api/v1/uploads", cfg.Storage.MaxUploadSize)))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	guards := router.Guards{
		Authenticated: middleware.JWTAuth(jwtService, blacklist, log),
		Admin:         middleware.RequireRole("admin"),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		guards.AuthLimit = middleware.AuthRateLimit(authLimiter)
	}

	r := router.Mount(engine, router.Handlers{
		Health:  handler.NewHealthHandler(db, cfg.App.Name, version),
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(productService),
		Upload:  handler.NewUploadHandler(imageService),
		Cart:    handler.NewCartHandler(cartService),
		Order:   handler.NewOrderHandler(orderService),
	}, guards, router.WithAPIVersion(cfg.App.APIVersion))

	engine.GET("/metrics", gin.WrapH(prom.Handler()))
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	log.Info("Routes registered",
		zap.String("base_path", r.BasePath()),
		zap.Int("routes", len(engine.Routes())),
	)

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

	// Graceful shutdown
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

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownTelemetry flushes the exporters and stops the profiler
func shutdownTelemetry(log *zap.Logger, profiler *telemetry.Profiler, providers ...shutdowner) {
	ctx := context.Background()
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
}
