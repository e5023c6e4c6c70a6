// Package cart holds the shopping cart use cases.
package cart

import (
	"context"

	"github.com/ecomstore/backend/internal/domain/cart"
	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService manages the per-user shopping cart
type CartService struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.Repository, productRepo catalog.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Get returns the user's populated cart
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, c)
}

// Add puts quantity units of a product in the cart, merging with an existing line
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartView, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(product.ID, qty, product.Stock); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.populate(ctx, c)
}

// Update sets the quantity of an existing line; zero or less removes it
func (s *CartService) Update(ctx context.Context, userID uuid.UUID, req UpdateItemRequest) (*CartView, error) {
	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Find(req.ProductID); !ok {
		return nil, cart.ErrItemNotInCart
	}

	available := 0
	if req.Quantity > 0 {
		product, err := s.productRepo.FindByID(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		available = product.Stock
	}
	if err := c.SetQuantity(req.ProductID, req.Quantity, available); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.populate(ctx, c)
}

// Remove drops a line from the cart; removing an absent line is a no-op
func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Find(productID); ok {
		c.Remove(productID)
		if err := s.cartRepo.Save(ctx, c); err != nil {
			return nil, err
		}
	}
	return s.populate(ctx, c)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.Clear(ctx, userID)
}

// populate joins cart lines with current product data.
// Lines whose product no longer exists are dropped from c and left out of the view.
func (s *CartService) populate(ctx context.Context, c *cart.Cart) (*CartView, error) {
	view := &CartView{
		Items:     make([]CartLine, 0, len(c.Items)),
		Subtotal:  decimal.Zero,
		UpdatedAt: c.UpdatedAt,
	}
	if c.IsEmpty() {
		return view, nil
	}

	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var stale []uuid.UUID
	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			stale = append(stale, item.ProductID)
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		images := p.Images
		if images == nil {
			images = []string{}
		}
		view.Items = append(view.Items, CartLine{
			Product: CartProduct{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price,
				Images:   images,
				Stock:    p.Stock,
				IsActive: p.IsActive,
			},
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
			AddedAt:   item.AddedAt,
		})
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}
	for _, id := range stale {
		c.Remove(id)
	}
	view.TotalItems = c.TotalQuantity()
	return view, nil
}
