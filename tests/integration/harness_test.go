package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
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
	"github.com/ecomstore/backend/internal/infrastructure/persistence"
	"github.com/ecomstore/backend/internal/infrastructure/printing"
	"github.com/ecomstore/backend/internal/infrastructure/seed"
	"github.com/ecomstore/backend/internal/infrastructure/storage"
	"github.com/ecomstore/backend/internal/infrastructure/telemetry"
	"github.com/ecomstore/backend/internal/interfaces/http/handler"
	"github.com/ecomstore/backend/internal/interfaces/http/middleware"
	"github.com/ecomstore/backend/internal/interfaces/http/router"
	"github.com/ecomstore/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// storefront is the HTTP API wired the same way cmd/server wires it,
// minus telemetry exporters and Redis
type storefront struct {
	DB     *TestDB
	Engine *gin.Engine
	Events *testutil.RecordingHandler
	Prom   *telemetry.Prometheus
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()

	db := NewTestDB(t)
	log := zap.NewNop()
	ctx := context.Background()

	users := persistence.NewGormUserRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)
	carts := persistence.NewGormCartRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	cacheFactory := cache.NewFactory(nil, cache.WithLogger(log))
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-access-secret-0123456789",
		RefreshSecret:          "integration-refresh-secret-0123456789",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "ecomstore-test",
		MaxRefreshCount:        3,
	})

	images, err := storage.New(ctx, config.StorageConfig{Driver: "local", LocalDir: t.TempDir()}, log)
	require.NoError(t, err)
	invoices, err := printing.NewInvoiceRenderer(printing.WithStoreName("EcomStore"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = invoices.Close() })

	featured := catalogapp.NewFeaturedCache(cacheFactory.Store("catalog:"))
	authService := identityapp.NewAuthService(users, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	productService := catalogapp.NewProductService(products, users, featured)
	imageService := catalogapp.NewImageService(images, catalogapp.ImageServiceConfig{
		MaxSize:         1 << 20,
		PublicURLPrefix: "/api/v1/uploads/",
	})
	cartService := cartapp.NewCartService(carts, products)
	orderService := orderapp.NewOrderService(orderapp.Repositories{
		Orders:   orders,
		Products: products,
		Users:    users,
		Carts:    carts,
	}, uow,
		orderapp.WithIdempotency(cacheFactory.IdempotencyStore(), shared.DefaultIdempotencyConfig()),
		orderapp.WithInvoiceRenderer(invoices),
		orderapp.WithLogger(log),
	)

	prom := telemetry.NewPrometheus()
	recorder := testutil.NewRecordingHandler()
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(appevent.NewFeaturedCacheInvalidator(featured, log))
	bus.Subscribe(appevent.NewOrderMetricsHandler(prom, log))
	bus.Subscribe(recorder)
	require.NoError(t, bus.Start(ctx))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	authService.SetEventPublisher(bus)
	productService.SetEventPublisher(bus)
	productService.SetLogger(log)
	orderService.SetEventPublisher(bus)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Metrics(prom, "/metrics"))
	router.Mount(engine, router.Handlers{
		Health:  handler.NewHealthHandler(db.Database, "ecomstore-test", "test"),
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(productService),
		Upload:  handler.NewUploadHandler(imageService),
		Cart:    handler.NewCartHandler(cartService),
		Order:   handler.NewOrderHandler(orderService),
	}, router.Guards{
		Authenticated: middleware.JWTAuth(jwtService, blacklist, log),
		Admin:         middleware.RequireRole("admin"),
	})
	engine.GET("/metrics", gin.WrapH(prom.Handler()))

	return &storefront{DB: db, Engine: engine, Events: recorder, Prom: prom}
}

// seedFixtures loads the built-in sample users and products
func (s *storefront) seedFixtures(t *testing.T) *seed.Result {
	t.Helper()
	fx, err := seed.DefaultFixtures()
	require.NoError(t, err)

	result, err := seed.NewSeeder(
		persistence.NewGormUnitOfWork(s.DB.DB),
		persistence.NewGormUserRepository(s.DB.DB),
		persistence.NewGormProductRepository(s.DB.DB),
		s.DB.Database,
		zap.NewNop(),
	).Run(context.Background(), fx, seed.Options{Reset: true})
	require.NoError(t, err)
	return result
}

func (s *storefront) client(t *testing.T) *testutil.APIClient {
	return testutil.NewAPIClient(t, s.Engine)
}

// login returns a client authenticated as email
func (s *storefront) login(t *testing.T, email, password string) *testutil.APIClient {
	t.Helper()
	c := s.client(t)
	resp := c.Post("/api/v1/auth/login", map[string]string{"email": email, "password": password})
	testutil.AssertSuccess(t, resp, http.StatusOK)
	tokens := testutil.DataAs[identityapp.AuthResponse](t, resp)
	require.NotEmpty(t, tokens.Token)
	return c.WithToken(tokens.Token)
}

// register creates a customer account and returns an authenticated client
func (s *storefront) register(t *testing.T, name, email string) *testutil.APIClient {
	t.Helper()
	c := s.client(t)
	resp := c.Post("/api/v1/auth/register", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	testutil.AssertSuccess(t, resp, http.StatusCreated)
	tokens := testutil.DataAs[identityapp.AuthResponse](t, resp)
	return c.WithToken(tokens.Token)
}
