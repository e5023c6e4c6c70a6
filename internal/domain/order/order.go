// Package order models placed orders and their fulfilment lifecycle.
package order

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/ecomstore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order errors
var (
	ErrNoItems              = shared.NewDomainError("INVALID_INPUT", "No items in order")
	ErrNotFound             = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrCannotCancel         = shared.NewDomainError("INVALID_STATE", "Order cannot be cancelled")
	ErrInvalidTransition    = shared.NewDomainError("INVALID_STATUS_TRANSITION", "Invalid order status transition")
	ErrInvalidPaymentMethod = shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
)

// orderNumberAlphabet has 32 symbols so a random byte modulo its length is
// uniform (256 is a multiple of 32). I, O, 0 and 1 are left out.
const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Item is a snapshot of a product line taken when the order was placed
type Item struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int
}

// LineTotal returns price times quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root for a customer purchase
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string
	UserID            uuid.UUID
	Items             []Item
	ShippingAddress   valueobject.Address
	PaymentMethod     PaymentMethod
	PaymentStatus     PaymentStatus
	Status            Status
	ShippingFee       decimal.Decimal
	Tax               decimal.Decimal
	TotalAmount       decimal.Decimal
	TrackingNumber    string
	EstimatedDelivery *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
}

// Placement carries what the customer submitted at checkout, with items already snapshotted
type Placement struct {
	UserID          uuid.UUID
	Items           []Item
	ShippingAddress valueobject.Address
	PaymentMethod   PaymentMethod
	ShippingFee     decimal.Decimal
	Tax             decimal.Decimal
}

// NewOrder places a pending order and computes its total
func NewOrder(p Placement) (*Order, error) {
	if p.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(p.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range p.Items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if item.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		if item.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
		}
	}
	if p.ShippingAddress.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	if !p.PaymentMethod.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}
	if p.ShippingFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING_FEE", "Shipping fee cannot be negative")
	}
	if p.Tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX", "Tax cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            p.UserID,
		Items:             append([]Item(nil), p.Items...),
		ShippingAddress:   p.ShippingAddress,
		PaymentMethod:     p.PaymentMethod,
		PaymentStatus:     PaymentPending,
		Status:            StatusPending,
		ShippingFee:       p.ShippingFee,
		Tax:               p.Tax,
	}
	o.OrderNumber = GenerateOrderNumber(o.CreatedAt)
	o.TotalAmount = o.Subtotal().Add(o.ShippingFee).Add(o.Tax)

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// GenerateOrderNumber builds an ORD-YYYYMMDD-XXXXXX number for the given day
func GenerateOrderNumber(at time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to uuid bytes
		id := uuid.New()
		copy(buf, id[:6])
	}
	for i := range buf {
		buf[i] = orderNumberAlphabet[int(buf[i])%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), string(buf))
}

// Subtotal returns the sum of the line totals
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount returns the number of units ordered
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// StatusUpdate is an admin change to the fulfilment state
type StatusUpdate struct {
	Status            Status
	TrackingNumber    *string
	EstimatedDelivery *time.Time
	PaymentStatus     *PaymentStatus
}

// UpdateStatus moves the order through fulfilment. It returns true when the
// order became cancelled, so callers can restock.
func (o *Order) UpdateStatus(u StatusUpdate) (bool, error) {
	if !u.Status.IsValid() {
		return false, invalidStatusError(u.Status)
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.IsValid() {
		return false, shared.NewDomainError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Invalid payment status: %s", *u.PaymentStatus))
	}
	if !o.Status.CanTransitionTo(u.Status) {
		return false, ErrInvalidTransition.WithCause(fmt.Errorf("cannot move order from %s to %s", o.Status, u.Status))
	}

	now := time.Now()
	previous := o.Status
	o.Status = u.Status
	if u.TrackingNumber != nil {
		o.TrackingNumber = *u.TrackingNumber
	}
	if u.EstimatedDelivery != nil {
		o.EstimatedDelivery = u.EstimatedDelivery
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}

	cancelled := false
	switch u.Status {
	case StatusDelivered:
		o.DeliveredAt = &now
		if o.PaymentMethod == PaymentCashOnDelivery {
			o.PaymentStatus = PaymentPaid
		}
	case StatusCancelled:
		o.CancelledAt = &now
		cancelled = true
	}

	o.touch(now)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	if cancelled {
		o.AddDomainEvent(NewOrderCancelledEvent(o, previous))
	}
	return cancelled, nil
}

// Cancel cancels a pending or confirmed order on behalf of its owner
func (o *Order) Cancel() error {
	if !o.Status.IsCancellable() {
		return ErrCannotCancel
	}
	now := time.Now()
	previous := o.Status
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.touch(now)
	o.AddDomainEvent(NewOrderCancelledEvent(o, previous))
	return nil
}

func (o *Order) touch(now time.Time) {
	o.MarkModified(now)
}
