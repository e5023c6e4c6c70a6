package order

import (
	"time"

	"github.com/ecomstore/backend/internal/domain/identity"
	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/ecomstore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderItemRequest is one requested order line
type CreateOrderItemRequest struct {
	Product  uuid.UUID `json:"product" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1,max=1000"`
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	Items           []CreateOrderItemRequest `json:"items" binding:"dive"`
	ShippingAddress valueobject.AddressDTO   `json:"shippingAddress"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	ShippingFee     decimal.Decimal          `json:"shippingFee"`
	Tax             decimal.Decimal          `json:"tax"`
}

// UpdateStatusRequest is the body of PUT /orders/:id/status
type UpdateStatusRequest struct {
	OrderStatus       string     `json:"orderStatus" binding:"required"`
	TrackingNumber    *string    `json:"trackingNumber" binding:"omitempty,max=100"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	PaymentStatus     *string    `json:"paymentStatus"`
}

// ListOrdersRequest is the query of GET /orders
type ListOrdersRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status"`
}

// Requester identifies the caller of an order operation
type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// OrderItemResponse is an order line as returned by the API
type OrderItemResponse struct {
	Product   uuid.UUID       `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderUserResponse is the customer summary embedded in order details
type OrderUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID              `json:"id"`
	OrderNumber       string                 `json:"order_number"`
	UserID            uuid.UUID              `json:"user_id"`
	User              *OrderUserResponse     `json:"user,omitempty"`
	Items             []OrderItemResponse    `json:"items"`
	ShippingAddress   valueobject.AddressDTO `json:"shipping_address"`
	PaymentMethod     string                 `json:"payment_method"`
	PaymentStatus     string                 `json:"payment_status"`
	OrderStatus       string                 `json:"order_status"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
	ShippingFee       decimal.Decimal        `json:"shipping_fee"`
	Tax               decimal.Decimal        `json:"tax"`
	TotalAmount       decimal.Decimal        `json:"total_amount"`
	TrackingNumber    string                 `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time             `json:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time             `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// PaginationResponse describes one page of a list
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// OrderListResponse is the admin order list
type OrderListResponse struct {
	Orders     []OrderResponse    `json:"orders"`
	Pagination PaginationResponse `json:"pagination"`
}

// ToOrderResponse converts a domain order; user may be nil
func ToOrderResponse(o *order.Order, user *identity.User) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			Product:   item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		}
	}
	resp := OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Items:             items,
		ShippingAddress:   o.ShippingAddress.ToDTO(),
		PaymentMethod:     o.PaymentMethod.String(),
		PaymentStatus:     o.PaymentStatus.String(),
		OrderStatus:       o.Status.String(),
		Subtotal:          o.Subtotal(),
		ShippingFee:       o.ShippingFee,
		Tax:               o.Tax,
		TotalAmount:       o.TotalAmount,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if user != nil {
		resp.User = &OrderUserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	return resp
}

// ToOrderResponses converts a list of orders, embedding their customers when known
func ToOrderResponses(orders []order.Order, users map[uuid.UUID]*identity.User) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i], users[orders[i].UserID])
	}
	return out
}

func newPagination(page, limit int, total int64) PaginationResponse {
	return PaginationResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: shared.TotalPages(total, limit),
	}
}
