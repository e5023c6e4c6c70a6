package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	orderapp "github.com/ecomstore/backend/internal/application/order"
	"github.com/ecomstore/backend/internal/domain/shared/valueobject"
	"github.com/ecomstore/backend/internal/interfaces/http/dto"
	"github.com/ecomstore/backend/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRequest(items ...orderapp.CreateOrderItemRequest) orderapp.CreateOrderRequest {
	return orderapp.CreateOrderRequest{
		Items: items,
		ShippingAddress: valueobject.AddressDTO{
			FullName: "John Doe",
			Street:   "1 Main St",
			City:     "Springfield",
			ZipCode:  "12345",
			Country:  "US",
		},
		PaymentMethod: "cash_on_delivery",
		ShippingFee:   decimal.NewFromInt(5),
		Tax:           decimal.RequireFromString("2.50"),
	}
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestOrderHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	phone := env.createProduct(t, "Phone", 30, 5, false)
	cable := env.createProduct(t, "Cable", 10, 100, false)
	_, token := env.createUser(t, "John", "john@example.com", false)

	w := env.do(t, http.MethodPost, "/api/v1/cart/add", map[string]any{"productId": phone.ID, "quantity": 1}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req := orderRequest(
		orderapp.CreateOrderItemRequest{Product: phone.ID, Quantity: 2},
		orderapp.CreateOrderItemRequest{Product: cable.ID, Quantity: 3},
	)
	w = env.do(t, http.MethodPost, "/api/v1/orders", req, token, middleware.IdempotencyKeyHeader, "checkout-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decodeData[orderapp.OrderResponse](t, w)

	assert.True(t, strings.HasPrefix(placed.OrderNumber, "ORD-"), placed.OrderNumber)
	assert.Equal(t, "pending", placed.OrderStatus)
	assert.Equal(t, "pending", placed.PaymentStatus)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, "Phone", placed.Items[0].Name)
	assert.True(t, placed.TotalAmount.Equal(decimal.RequireFromString("97.50")), placed.TotalAmount.String())
	assert.Equal(t, 3, env.stock(t, phone.ID))
	assert.Equal(t, 97, env.stock(t, cable.ID))

	w = env.do(t, http.MethodGet, "/api/v1/cart", nil, token)
	assert.Empty(t, decodeData[struct {
		Items []any `json:"items"`
	}](t, w).Items)

	t.Run("retry with the same idempotency key", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/orders", req, token, middleware.IdempotencyKeyHeader, "checkout-1")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, placed.ID, decodeData[orderapp.OrderResponse](t, w).ID)
		assert.Equal(t, 3, env.stock(t, phone.ID))
	})

	t.Run("no items", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/orders", orderRequest(), token)
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput, "No items in order")
	})

	t.Run("insufficient stock rolls back", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/orders", orderRequest(
			orderapp.CreateOrderItemRequest{Product: cable.ID, Quantity: 1},
			orderapp.CreateOrderItemRequest{Product: phone.ID, Quantity: 4},
		), token)
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeInsufficientStock, "Not enough stock for Phone. Available: 3")
		assert.Equal(t, 97, env.stock(t, cable.ID))
	})

	t.Run("unknown product", func(t *testing.T) {
		missing := uuid.New()
		w := env.do(t, http.MethodPost, "/api/v1/orders", orderRequest(
			orderapp.CreateOrderItemRequest{Product: missing, Quantity: 1},
		), token)
		assertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound, "Product "+missing.String()+" not found")
	})

	t.Run("invalid payment method", func(t *testing.T) {
		bad := orderRequest(orderapp.CreateOrderItemRequest{Product: cable.ID, Quantity: 1})
		bad.PaymentMethod = "barter"
		w := env.do(t, http.MethodPost, "/api/v1/orders", bad, token)
		assertError(t, w, http.StatusBadRequest, "ERR_INVALID_PAYMENT_METHOD", "")
	})
}

func TestOrderHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	phone := env.createProduct(t, "Phone", 30, 10, false)
	_, admin := env.createUser(t, "Admin", "admin@ecomstore.com", true)
	_, john := env.createUser(t, "John", "john@example.com", false)
	_, jane := env.createUser(t, "Jane", "jane@example.com", false)

	place := func(t *testing.T, token string, qty int) orderapp.OrderResponse {
		t.Helper()
		w := env.do(t, http.MethodPost, "/api/v1/orders",
			orderRequest(orderapp.CreateOrderItemRequest{Product: phone.ID, Quantity: qty}), token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decodeData[orderapp.OrderResponse](t, w)
	}
	first := place(t, john, 1)
	second := place(t, john, 2)
	place(t, jane, 1)

	t.Run("my orders newest first", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/orders/my-orders", nil, john)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		orders := decodeData[[]orderapp.OrderResponse](t, w)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
	})

	t.Run("get is limited to the owner and admins", func(t *testing.T) {
		path := "/api/v1/orders/" + first.ID.String()

		w := env.do(t, http.MethodGet, path, nil, john)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeData[orderapp.OrderResponse](t, w)
		require.NotNil(t, resp.User)
		assert.Equal(t, "john@example.com", resp.User.Email)

		w = env.do(t, http.MethodGet, path, nil, jane)
		assertError(t, w, http.StatusForbidden, dto.ErrCodeForbidden, "Access denied")

		w = env.do(t, http.MethodGet, path, nil, admin)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil, john)
		assertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound, "Order not found")
	})

	t.Run("admin list", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/orders?limit=2", nil, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeData[orderapp.OrderListResponse](t, w)
		assert.Len(t, resp.Orders, 2)
		assert.Equal(t, orderapp.PaginationResponse{Page: 1, Limit: 2, Total: 3, Pages: 2}, resp.Pagination)

		w = env.do(t, http.MethodGet, "/api/v1/orders?status=bogus", nil, admin)
		assertError(t, w, http.StatusBadRequest, "ERR_INVALID_STATUS", "")

		w = env.do(t, http.MethodGet, "/api/v1/orders", nil, john)
		assertError(t, w, http.StatusForbidden, dto.ErrCodeForbidden, "Access denied")
	})

	t.Run("owner cancels and stock returns", func(t *testing.T) {
		before := env.stock(t, phone.ID)

		w := env.do(t, http.MethodPut, "/api/v1/orders/"+second.ID.String()+"/cancel", nil, jane)
		assertError(t, w, http.StatusForbidden, dto.ErrCodeForbidden, "")

		w = env.do(t, http.MethodPut, "/api/v1/orders/"+second.ID.String()+"/cancel", nil, john)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeData[orderapp.OrderResponse](t, w)
		assert.Equal(t, "cancelled", resp.OrderStatus)
		assert.NotNil(t, resp.CancelledAt)
		assert.Equal(t, before+2, env.stock(t, phone.ID))
	})

	t.Run("status updates", func(t *testing.T) {
		path := "/api/v1/orders/" + first.ID.String() + "/status"
		tracking := "TRACK-1"

		w := env.do(t, http.MethodPut, path, orderapp.UpdateStatusRequest{OrderStatus: "shipped", TrackingNumber: &tracking}, john)
		assertError(t, w, http.StatusForbidden, dto.ErrCodeForbidden, "")

		w = env.do(t, http.MethodPut, path, orderapp.UpdateStatusRequest{OrderStatus: "shipped", TrackingNumber: &tracking}, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "TRACK-1", decodeData[orderapp.OrderResponse](t, w).TrackingNumber)

		w = env.do(t, http.MethodPut, path, orderapp.UpdateStatusRequest{OrderStatus: "confirmed"}, admin)
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidStatusTransition, "")

		w = env.do(t, http.MethodPut, "/api/v1/orders/"+first.ID.String()+"/cancel", nil, john)
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidState, "Order cannot be cancelled")

		w = env.do(t, http.MethodPut, path, orderapp.UpdateStatusRequest{OrderStatus: "delivered"}, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		delivered := decodeData[orderapp.OrderResponse](t, w)
		assert.NotNil(t, delivered.DeliveredAt)
		assert.Equal(t, "paid", delivered.PaymentStatus)
	})

	t.Run("invoice", func(t *testing.T) {
		path := "/api/v1/orders/" + first.ID.String() + "/invoice"

		w := env.do(t, http.MethodGet, path, nil, john)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-"+first.OrderNumber+".html")
		assert.Contains(t, w.Body.String(), first.OrderNumber)

		w = env.do(t, http.MethodGet, path+"?format=pdf", nil, admin)
		assertError(t, w, http.StatusNotImplemented, dto.ErrCodeNotImplemented, "")

		w = env.do(t, http.MethodGet, path+"?format=docx", nil, john)
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput, "")

		w = env.do(t, http.MethodGet, path, nil, jane)
		assertError(t, w, http.StatusForbidden, dto.ErrCodeForbidden, "")
	})
}
