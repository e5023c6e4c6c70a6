// Package order holds checkout and order fulfilment use cases.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecomstore/backend/internal/domain/cart"
	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/ecomstore/backend/internal/domain/identity"
	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/ecomstore/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRequestInFlight is returned when another request holds the same idempotency key
var ErrRequestInFlight = shared.NewDomainError("IDEMPOTENCY_CONFLICT",
	"A request with this Idempotency-Key is already being processed")

// Repositories groups the stores the order service works with
type Repositories struct {
	Orders   order.Repository
	Products catalog.ProductRepository
	Users    identity.UserRepository
	Carts    cart.Repository
}

// OrderService places and manages orders
type OrderService struct {
	orderRepo      order.Repository
	productRepo    catalog.ProductRepository
	userRepo       identity.UserRepository
	cartRepo       cart.Repository
	uow            shared.UnitOfWork
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	invoices       InvoiceRenderer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithIdempotency enables Idempotency-Key handling on Create
func WithIdempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) OrderServiceOption {
	return func(s *OrderService) {
		s.idempotency = store
		s.idemConfig = cfg
	}
}

// WithInvoiceRenderer sets the renderer used by Invoice
func WithInvoiceRenderer(r InvoiceRenderer) OrderServiceOption {
	return func(s *OrderService) {
		s.invoices = r
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) OrderServiceOption {
	return func(s *OrderService) {
		s.logger = logger
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(repos Repositories, uow shared.UnitOfWork, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		orderRepo:   repos.Orders,
		productRepo: repos.Products,
		userRepo:    repos.Users,
		cartRepo:    repos.Carts,
		uow:         uow,
		idemConfig:  shared.DefaultIdempotencyConfig(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create places an order for userID. Stock is taken and the cart is cleared in
// the same transaction. A non-empty idempotencyKey makes retries return the
// order placed by the first request.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest, idempotencyKey string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create",
		telemetry.AttrUserID, userID.String(),
		telemetry.AttrItemCount, len(req.Items),
		telemetry.AttrPaymentMethod, req.PaymentMethod,
	)
	defer span.End()

	resp, err := s.create(ctx, userID, req, idempotencyKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.AttrOrderID, resp.ID.String(), telemetry.AttrOrderNumber, resp.OrderNumber)
	return resp, nil
}

func (s *OrderService) create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest, idempotencyKey string) (*OrderResponse, error) {
	placement, err := validatePlacement(userID, req)
	if err != nil {
		return nil, err
	}

	idemKey := strings.TrimSpace(idempotencyKey)
	if idemKey == "" || s.idempotency == nil {
		return s.place(ctx, placement, req.Items)
	}

	storeKey := fmt.Sprintf("order:%s:%s", userID, idemKey)
	if resp, ok, err := s.replay(ctx, storeKey); err != nil || ok {
		return resp, err
	}

	reserved, err := s.idempotency.Reserve(ctx, storeKey, s.idemConfig.ReservationTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if !reserved {
		// the first request may have completed in between
		if resp, ok, err := s.replay(ctx, storeKey); err != nil || ok {
			return resp, err
		}
		return nil, ErrRequestInFlight
	}

	resp, err := s.place(ctx, placement, req.Items)
	if err != nil {
		if relErr := s.idempotency.Release(ctx, storeKey); relErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("key", storeKey), zap.Error(relErr))
		}
		return nil, err
	}
	if err := s.idempotency.Complete(ctx, storeKey, resp.ID.String(), s.idemConfig.TTL); err != nil {
		s.logger.Warn("Failed to store idempotency result", zap.String("key", storeKey), zap.Error(err))
	}
	return resp, nil
}

func (s *OrderService) replay(ctx context.Context, storeKey string) (*OrderResponse, bool, error) {
	value, ok, err := s.idempotency.Get(ctx, storeKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	orderID, err := uuid.Parse(value)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt idempotency value for %s: %w", storeKey, err)
	}
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("Replayed order for idempotency key", zap.String("order_number", o.OrderNumber))
	resp := ToOrderResponse(o, nil)
	return &resp, true, nil
}

func (s *OrderService) place(ctx context.Context, placement order.Placement, lines []CreateOrderItemRequest) (*OrderResponse, error) {
	var placed *order.Order
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		items := make([]order.Item, 0, len(lines))
		for _, line := range lines {
			item, err := s.reserveStock(ctx, line)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		placement.Items = items

		o, err := order.NewOrder(placement)
		if err != nil {
			return err
		}
		if err := s.orderRepo.Create(ctx, o); err != nil {
			return err
		}
		if err := s.cartRepo.Clear(ctx, placement.UserID); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_number", placed.OrderNumber),
		zap.String("user_id", placed.UserID.String()),
		zap.String("total", placed.TotalAmount.StringFixed(2)))
	s.publishEvents(ctx, placed)

	resp := ToOrderResponse(placed, nil)
	return &resp, nil
}

// reserveStock snapshots the product and takes qty units off the shelf
func (s *OrderService) reserveStock(ctx context.Context, line CreateOrderItemRequest) (order.Item, error) {
	product, err := s.productRepo.FindByID(ctx, line.Product)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return order.Item{}, productNotFound(line.Product)
		}
		return order.Item{}, err
	}
	if !product.IsPurchasable(line.Quantity) {
		if !product.IsActive {
			return order.Item{}, productNotFound(line.Product)
		}
		return order.Item{}, catalog.NewInsufficientStockError(product.Name, product.Stock)
	}

	if err := s.productRepo.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
		switch {
		case errors.Is(err, shared.ErrInsufficientStock):
			available := product.Stock
			if current, findErr := s.productRepo.FindByID(ctx, product.ID); findErr == nil {
				available = current.Stock
			}
			return order.Item{}, catalog.NewInsufficientStockError(product.Name, available)
		case errors.Is(err, shared.ErrNotFound):
			return order.Item{}, productNotFound(line.Product)
		}
		return order.Item{}, err
	}

	return order.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.PrimaryImage(),
		Price:     product.Price,
		Quantity:  line.Quantity,
	}, nil
}

// MyOrders returns the caller's orders, newest first
func (s *OrderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders, nil), nil
}

// Get returns one order to its owner or an admin
func (s *OrderService) Get(ctx context.Context, id uuid.UUID, requester Requester) (*OrderResponse, error) {
	o, err := s.findAuthorized(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, s.lookupUser(ctx, o.UserID))
	return &resp, nil
}

// List returns one page of all orders for admins
func (s *OrderService) List(ctx context.Context, req ListOrdersRequest) (*OrderListResponse, error) {
	q := order.Query{Page: req.Page, Limit: req.Limit}
	if req.Status != "" {
		status, err := order.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		q.Status = &status
	}
	q.Normalize()

	orders, total, err := s.orderRepo.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}
	users, err := s.lookupUsers(ctx, orders)
	if err != nil {
		return nil, err
	}
	return &OrderListResponse{
		Orders:     ToOrderResponses(orders, users),
		Pagination: newPagination(q.Page, q.Limit, total),
	}, nil
}

// UpdateStatus moves an order through fulfilment. Cancelling restocks its items.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		telemetry.AttrOrderID, id.String(),
		telemetry.AttrOrderStatus, req.OrderStatus,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	status, err := order.ParseStatus(req.OrderStatus)
	if err != nil {
		return nil, err
	}
	update := order.StatusUpdate{
		Status:            status,
		TrackingNumber:    req.TrackingNumber,
		EstimatedDelivery: req.EstimatedDelivery,
	}
	if req.PaymentStatus != nil {
		ps := order.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &ps
	}

	var updated *order.Order
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		cancelled, err := o.UpdateStatus(update)
		if err != nil {
			return err
		}
		if err := s.orderRepo.Update(ctx, o); err != nil {
			return err
		}
		if cancelled {
			if err := s.restock(ctx, o); err != nil {
				return err
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_number", updated.OrderNumber),
		zap.String("status", updated.Status.String()))
	s.publishEvents(ctx, updated)

	resp := ToOrderResponse(updated, s.lookupUser(ctx, updated.UserID))
	return &resp, nil
}

// Cancel cancels a pending or confirmed order on behalf of its owner and restocks it
func (s *OrderService) Cancel(ctx context.Context, id, userID uuid.UUID) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel",
		telemetry.AttrOrderID, id.String(),
		telemetry.AttrUserID, userID.String(),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var cancelled *order.Order
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return shared.ErrForbidden
		}
		if err := o.Cancel(); err != nil {
			return err
		}
		if err := s.orderRepo.Update(ctx, o); err != nil {
			return err
		}
		if err := s.restock(ctx, o); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled by customer", zap.String("order_number", cancelled.OrderNumber))
	s.publishEvents(ctx, cancelled)

	resp := ToOrderResponse(cancelled, nil)
	return &resp, nil
}

// restock puts every line back on the shelf, skipping products deleted since
func (s *OrderService) restock(ctx context.Context, o *order.Order) error {
	for _, item := range o.Items {
		err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Debug("Skipping restock of deleted product", zap.String("product_id", item.ProductID.String()))
			continue
		}
		return err
	}
	return nil
}

func (s *OrderService) findAuthorized(ctx context.Context, id uuid.UUID, requester Requester) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin && !o.IsOwnedBy(requester.UserID) {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

func (s *OrderService) lookupUser(ctx context.Context, id uuid.UUID) *identity.User {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load order customer", zap.Error(err))
		}
		return nil
	}
	return user
}

func (s *OrderService) lookupUsers(ctx context.Context, orders []order.Order) (map[uuid.UUID]*identity.User, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		ids = append(ids, o.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*identity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}

func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
	if err := shared.PublishPending(ctx, s.eventPublisher, o); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Error(err))
	}
}

// validatePlacement checks the request before any stock is touched
func validatePlacement(userID uuid.UUID, req CreateOrderRequest) (order.Placement, error) {
	if len(req.Items) == 0 {
		return order.Placement{}, order.ErrNoItems
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return order.Placement{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
	}
	method := order.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return order.Placement{}, order.ErrInvalidPaymentMethod
	}
	if req.ShippingFee.IsNegative() {
		return order.Placement{}, shared.NewDomainError("INVALID_SHIPPING_FEE", "Shipping fee cannot be negative")
	}
	if req.Tax.IsNegative() {
		return order.Placement{}, shared.NewDomainError("INVALID_TAX", "Tax cannot be negative")
	}
	address, err := req.ShippingAddress.ToAddress()
	if err != nil {
		return order.Placement{}, shared.NewDomainError("INVALID_ADDRESS", "Invalid shipping address: "+err.Error())
	}
	return order.Placement{
		UserID:          userID,
		ShippingAddress: address,
		PaymentMethod:   method,
		ShippingFee:     req.ShippingFee.Round(2),
		Tax:             req.Tax.Round(2),
	}, nil
}

func productNotFound(id uuid.UUID) error {
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", id))
}
