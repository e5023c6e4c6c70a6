package integration

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	cartapp "github.com/ecomstore/backend/internal/application/cart"
	catalogapp "github.com/ecomstore/backend/internal/application/catalog"
	identityapp "github.com/ecomstore/backend/internal/application/identity"
	orderapp "github.com/ecomstore/backend/internal/application/order"
	"github.com/ecomstore/backend/internal/domain/identity"
	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shippingAddress = map[string]string{
	"fullName": "John Doe",
	"street":   "1 Market St",
	"city":     "San Francisco",
	"state":    "CA",
	"zipCode":  "94105",
	"country":  "US",
}

func findProduct(t *testing.T, products []catalogapp.ProductResponse, name string) catalogapp.ProductResponse {
	t.Helper()
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	require.FailNow(t, "product not found", name)
	return catalogapp.ProductResponse{}
}

func listProducts(t *testing.T, c *testutil.APIClient, query string) catalogapp.ProductListResponse {
	t.Helper()
	resp := c.Get("/api/v1/products" + query)
	testutil.AssertSuccess(t, resp, http.StatusOK)
	return testutil.DataAs[catalogapp.ProductListResponse](t, resp)
}

func TestStorefront_Catalog(t *testing.T) {
	s := newStorefront(t)
	result := s.seedFixtures(t)
	require.Equal(t, 8, result.Products)
	c := s.client(t)

	t.Run("health", func(t *testing.T) {
		resp := c.Get("/api/health")
		testutil.AssertSuccess(t, resp, http.StatusOK)
	})

	t.Run("list with filters", func(t *testing.T) {
		all := listProducts(t, c, "")
		assert.EqualValues(t, 8, all.Pagination.Total)

		electronics := listProducts(t, c, "?category=electronics&sort=price_asc")
		require.Len(t, electronics.Products, 3)
		assert.Equal(t, "Laptop Stand Adjustable", electronics.Products[0].Name)
		assert.Equal(t, "Smart Watch Series 5", electronics.Products[2].Name)

		priced := listProducts(t, c, "?minPrice=100&maxPrice=200")
		for _, p := range priced.Products {
			f, _ := p.Price.Float64()
			assert.GreaterOrEqual(t, f, 100.0)
			assert.LessOrEqual(t, f, 200.0)
		}
		assert.EqualValues(t, 3, priced.Pagination.Total)
	})

	t.Run("full-text search", func(t *testing.T) {
		found := listProducts(t, c, "?search=headphones")
		require.Len(t, found.Products, 1)
		assert.Equal(t, "Wireless Bluetooth Headphones", found.Products[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		page := listProducts(t, c, "?limit=3&page=3")
		assert.Len(t, page.Products, 2)
		assert.Equal(t, 3, page.Pagination.Pages)
	})

	t.Run("featured", func(t *testing.T) {
		resp := c.Get("/api/v1/products/featured")
		testutil.AssertSuccess(t, resp, http.StatusOK)
		featured := testutil.DataAs[[]catalogapp.ProductResponse](t, resp)
		assert.Len(t, featured, 5)
		for _, p := range featured {
			assert.True(t, p.Featured)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		resp := c.Get("/api/v1/products/" + uuid.NewString())
		testutil.AssertError(t, resp, http.StatusNotFound, "ERR_NOT_FOUND")
	})
}

func TestStorefront_AdminCatalog(t *testing.T) {
	s := newStorefront(t)
	s.seedFixtures(t)
	admin := s.login(t, "admin@ecomstore.com", "admin123")
	customer := s.login(t, "john@example.com", "password123")

	create := map[string]any{
		"name":        "Desk Lamp",
		"description": "Adjustable LED desk lamp",
		"price":       35.5,
		"category":    "home",
		"stock":       12,
		"featured":    true,
		"tags":        []string{"lighting"},
	}

	t.Run("customers cannot create products", func(t *testing.T) {
		resp := customer.Post("/api/v1/products", create)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	resp := admin.Post("/api/v1/products", create)
	testutil.AssertSuccess(t, resp, http.StatusCreated)
	lamp := testutil.DataAs[catalogapp.ProductResponse](t, resp)
	assert.Equal(t, "35.5", lamp.Price.String())
	assert.True(t, s.Events.WaitFor("ProductCreated", 1, 2*time.Second))

	t.Run("featured list reflects the new product", func(t *testing.T) {
		featured := testutil.DataAs[[]catalogapp.ProductResponse](t, s.client(t).Get("/api/v1/products/featured"))
		findProduct(t, featured, "Desk Lamp")
	})

	t.Run("update", func(t *testing.T) {
		resp := admin.Put("/api/v1/products/"+lamp.ID.String(), map[string]any{"stock": 3, "featured": false})
		testutil.AssertSuccess(t, resp, http.StatusOK)
		updated := testutil.DataAs[catalogapp.ProductResponse](t, resp)
		assert.Equal(t, 3, updated.Stock)
		assert.False(t, updated.Featured)
	})

	t.Run("review once per user", func(t *testing.T) {
		path := "/api/v1/products/" + lamp.ID.String() + "/reviews"
		resp := customer.Post(path, map[string]any{"rating": 4, "comment": "Bright"})
		require.Less(t, resp.Code, 300, "body: %s", resp.Body)

		resp = customer.Post(path, map[string]any{"rating": 5})
		testutil.AssertError(t, resp, http.StatusBadRequest, "ERR_ALREADY_REVIEWED")

		got := testutil.DataAs[catalogapp.ProductResponse](t, s.client(t).Get("/api/v1/products/"+lamp.ID.String()))
		assert.Equal(t, 1, got.Ratings.Count)
		assert.InDelta(t, 4.0, got.Ratings.Average, 0.001)
		require.Len(t, got.Reviews, 1)
		assert.Equal(t, "John Doe", got.Reviews[0].User.Name)
	})

	t.Run("delete", func(t *testing.T) {
		resp := admin.Delete("/api/v1/products/" + lamp.ID.String())
		testutil.AssertSuccess(t, resp, http.StatusOK)
		resp = s.client(t).Get("/api/v1/products/" + lamp.ID.String())
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestStorefront_Auth(t *testing.T) {
	s := newStorefront(t)
	c := s.client(t)

	customer := s.register(t, "Alice", "alice@example.com")
	assert.True(t, s.Events.WaitFor(identity.EventTypeUserRegistered, 1, 2*time.Second))

	t.Run("duplicate email", func(t *testing.T) {
		resp := c.Post("/api/v1/auth/register", map[string]string{
			"name": "Alice", "email": "ALICE@example.com", "password": "secret123",
		})
		testutil.AssertError(t, resp, http.StatusConflict, "ERR_ALREADY_EXISTS")
	})

	t.Run("me", func(t *testing.T) {
		resp := customer.Get("/api/v1/auth/me")
		testutil.AssertSuccess(t, resp, http.StatusOK)
		me := testutil.DataAs[identityapp.UserResponse](t, resp)
		assert.Equal(t, "alice@example.com", me.Email)
		assert.Equal(t, "user", me.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := c.Post("/api/v1/auth/login", map[string]string{"email": "alice@example.com", "password": "nope"})
		testutil.AssertError(t, resp, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS")
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		session := s.login(t, "alice@example.com", "secret123")
		resp := session.Post("/api/v1/auth/logout", nil)
		testutil.AssertSuccess(t, resp, http.StatusOK)

		resp = session.Get("/api/v1/auth/me")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("password change", func(t *testing.T) {
		resp := customer.Put("/api/v1/auth/password", map[string]string{
			"current_password": "secret123", "new_password": "newsecret456",
		})
		testutil.AssertSuccess(t, resp, http.StatusOK)
		s.login(t, "alice@example.com", "newsecret456")
	})
}

func TestStorefront_Checkout(t *testing.T) {
	s := newStorefront(t)
	s.seedFixtures(t)
	admin := s.login(t, "admin@ecomstore.com", "admin123")
	john := s.login(t, "john@example.com", "password123")
	jane := s.login(t, "jane@example.com", "password123")

	products := listProducts(t, s.client(t), "?limit=50").Products
	headphones := findProduct(t, products, "Wireless Bluetooth Headphones")
	shirt := findProduct(t, products, "Organic Cotton T-Shirt")

	t.Run("cart", func(t *testing.T) {
		resp := john.Post("/api/v1/cart/add", map[string]any{"productId": headphones.ID, "quantity": 1})
		testutil.AssertSuccess(t, resp, http.StatusOK)
		resp = john.Post("/api/v1/cart/add", map[string]any{"productId": headphones.ID, "quantity": 1})
		testutil.AssertSuccess(t, resp, http.StatusOK)
		resp = john.Post("/api/v1/cart/add", map[string]any{"productId": shirt.ID, "quantity": 3})
		testutil.AssertSuccess(t, resp, http.StatusOK)

		cart := testutil.DataAs[cartapp.CartView](t, john.Get("/api/v1/cart"))
		assert.Equal(t, 5, cart.TotalItems)
		assert.Equal(t, "489.95", cart.Subtotal.StringFixed(2))

		resp = john.Put("/api/v1/cart/update", map[string]any{"productId": shirt.ID, "quantity": 2})
		testutil.AssertSuccess(t, resp, http.StatusOK)
		cart = testutil.DataAs[cartapp.CartView](t, resp)
		assert.Equal(t, 4, cart.TotalItems)

		resp = john.Post("/api/v1/cart/add", map[string]any{"productId": headphones.ID, "quantity": 1000})
		testutil.AssertError(t, resp, http.StatusBadRequest, "ERR_INSUFFICIENT_STOCK")
	})

	var placed orderapp.OrderResponse
	t.Run("place order", func(t *testing.T) {
		resp := john.WithHeader("Idempotency-Key", "checkout-1").Post("/api/v1/orders", map[string]any{
			"items": []map[string]any{
				{"product": headphones.ID, "quantity": 2},
				{"product": shirt.ID, "quantity": 2},
			},
			"shippingAddress": shippingAddress,
			"paymentMethod":   "credit_card",
			"shippingFee":     10,
			"tax":             5.5,
		})
		testutil.AssertSuccess(t, resp, http.StatusCreated)
		placed = testutil.DataAs[orderapp.OrderResponse](t, resp)

		assert.Equal(t, "459.96", placed.Subtotal.StringFixed(2))
		assert.Equal(t, "475.46", placed.TotalAmount.StringFixed(2))
		assert.Equal(t, string(order.StatusPending), placed.OrderStatus)
		assert.NotEmpty(t, placed.OrderNumber)

		cart := testutil.DataAs[cartapp.CartView](t, john.Get("/api/v1/cart"))
		assert.Empty(t, cart.Items, "cart is cleared after checkout")

		got := testutil.DataAs[catalogapp.ProductResponse](t, s.client(t).Get("/api/v1/products/"+headphones.ID.String()))
		assert.Equal(t, headphones.Stock-2, got.Stock)
		assert.True(t, s.Events.WaitFor(order.EventTypeOrderPlaced, 1, 2*time.Second))
	})

	t.Run("repeated idempotency key returns the same order", func(t *testing.T) {
		resp := john.WithHeader("Idempotency-Key", "checkout-1").Post("/api/v1/orders", map[string]any{
			"items":           []map[string]any{{"product": headphones.ID, "quantity": 2}},
			"shippingAddress": shippingAddress,
			"paymentMethod":   "credit_card",
		})
		require.Less(t, resp.Code, 300, "body: %s", resp.Body)
		assert.Equal(t, placed.ID, testutil.DataAs[orderapp.OrderResponse](t, resp).ID)
		assert.EqualValues(t, 1, s.DB.Count("orders"))
	})

	t.Run("ownership", func(t *testing.T) {
		resp := jane.Get("/api/v1/orders/" + placed.ID.String())
		assert.Contains(t, []int{http.StatusForbidden, http.StatusNotFound}, resp.Code)

		resp = admin.Get("/api/v1/orders/" + placed.ID.String())
		testutil.AssertSuccess(t, resp, http.StatusOK)

		mine := testutil.DataAs[orderapp.OrderListResponse](t, john.Get("/api/v1/orders/my-orders"))
		require.Len(t, mine.Orders, 1)
		assert.Empty(t, testutil.DataAs[orderapp.OrderListResponse](t, jane.Get("/api/v1/orders/my-orders")).Orders)

		resp = john.Get("/api/v1/orders")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("invoice", func(t *testing.T) {
		resp := john.Get("/api/v1/orders/" + placed.ID.String() + "/invoice")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, string(resp.Body), placed.OrderNumber)

		resp = john.Get("/api/v1/orders/" + placed.ID.String() + "/invoice?format=pdf")
		testutil.AssertError(t, resp, http.StatusNotImplemented, "ERR_NOT_IMPLEMENTED")
	})

	t.Run("fulfilment moves forward only", func(t *testing.T) {
		path := "/api/v1/orders/" + placed.ID.String() + "/status"
		resp := admin.Put(path, map[string]any{"orderStatus": "shipped", "trackingNumber": "1Z999"})
		testutil.AssertSuccess(t, resp, http.StatusOK)
		shipped := testutil.DataAs[orderapp.OrderResponse](t, resp)
		assert.Equal(t, "1Z999", shipped.TrackingNumber)

		resp = admin.Put(path, map[string]any{"orderStatus": "confirmed"})
		testutil.AssertError(t, resp, http.StatusBadRequest, "ERR_INVALID_STATUS_TRANSITION")

		resp = john.Put("/api/v1/orders/"+placed.ID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.True(t, s.Events.WaitFor(order.EventTypeOrderStatusChanged, 1, 2*time.Second))
	})

	t.Run("cancel restocks", func(t *testing.T) {
		resp := jane.Post("/api/v1/orders", map[string]any{
			"items":           []map[string]any{{"product": shirt.ID, "quantity": 4}},
			"shippingAddress": shippingAddress,
			"paymentMethod":   "cash_on_delivery",
		})
		testutil.AssertSuccess(t, resp, http.StatusCreated)
		o := testutil.DataAs[orderapp.OrderResponse](t, resp)

		before := testutil.DataAs[catalogapp.ProductResponse](t, s.client(t).Get("/api/v1/products/"+shirt.ID.String())).Stock

		resp = jane.Put("/api/v1/orders/"+o.ID.String()+"/cancel", nil)
		testutil.AssertSuccess(t, resp, http.StatusOK)
		assert.Equal(t, string(order.StatusCancelled), testutil.DataAs[orderapp.OrderResponse](t, resp).OrderStatus)

		after := testutil.DataAs[catalogapp.ProductResponse](t, s.client(t).Get("/api/v1/products/"+shirt.ID.String())).Stock
		assert.Equal(t, before+4, after)
	})

	t.Run("admin listing", func(t *testing.T) {
		resp := admin.Get("/api/v1/orders?status=cancelled")
		testutil.AssertSuccess(t, resp, http.StatusOK)
		list := testutil.DataAs[orderapp.OrderListResponse](t, resp)
		require.Len(t, list.Orders, 1)
		require.NotNil(t, list.Orders[0].User)
		assert.Equal(t, "jane@example.com", list.Orders[0].User.Email)
	})

	t.Run("metrics", func(t *testing.T) {
		require.True(t, s.Events.WaitFor(order.EventTypeOrderCancelled, 1, 2*time.Second))
		scrape := func() string {
			w := httptest.NewRecorder()
			s.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			body, _ := io.ReadAll(w.Body)
			return string(body)
		}
		testutil.RequireEventually(t, func() bool {
			return strings.Contains(scrape(), "ecomstore_orders_cancelled_total")
		}, 2*time.Second)
		body := scrape()
		assert.Contains(t, body, "ecomstore_orders_placed_total")
		assert.Contains(t, body, "ecomstore_http_requests_total")
	})
}

func TestStorefront_ConcurrentCheckoutNeverOversells(t *testing.T) {
	s := newStorefront(t)
	s.seedFixtures(t)
	admin := s.login(t, "admin@ecomstore.com", "admin123")

	resp := admin.Post("/api/v1/products", map[string]any{
		"name":        "Limited Sneaker",
		"description": "Only three pairs",
		"price":       120,
		"category":    "sports",
		"stock":       3,
	})
	testutil.AssertSuccess(t, resp, http.StatusCreated)
	sneaker := testutil.DataAs[catalogapp.ProductResponse](t, resp)

	const buyers = 6
	clients := make([]*testutil.APIClient, buyers)
	for i := range clients {
		clients[i] = s.register(t, fmt.Sprintf("Buyer %d", i), fmt.Sprintf("buyer%d@example.com", i))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for _, c := range clients {
		wg.Add(1)
		go func(c *testutil.APIClient) {
			defer wg.Done()
			resp := c.Post("/api/v1/orders", map[string]any{
				"items":           []map[string]any{{"product": sneaker.ID, "quantity": 1}},
				"shippingAddress": shippingAddress,
				"paymentMethod":   "paypal",
			})
			if resp.Code == http.StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	got := testutil.DataAs[catalogapp.ProductResponse](t, s.client(t).Get("/api/v1/products/"+sneaker.ID.String()))
	assert.Equal(t, 0, got.Stock)
}
