// Package catalog holds the product catalog use cases.
package catalog

import (
	"context"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/ecomstore/backend/internal/domain/identity"
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	userRepo       identity.UserRepository
	featured       *FeaturedCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService.
// featured may be nil, in which case the featured list is read straight from the repository.
func NewProductService(
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	featured *FeaturedCache,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		userRepo:    userRepo,
		featured:    featured,
		logger:      zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger used for event publishing failures
func (s *ProductService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// List returns one page of active products matching the request filters
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) (*ProductListResponse, error) {
	q := req.ToQuery()
	products, total, err := s.productRepo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ProductListResponse{
		Products: ToProductResponses(products),
		Pagination: PaginationResponse{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: shared.TotalPages(total, q.Limit),
		},
	}, nil
}

// Featured returns the featured products shown on the home page
func (s *ProductService) Featured(ctx context.Context) ([]ProductResponse, error) {
	if s.featured == nil {
		return s.loadFeatured(ctx)
	}
	return s.featured.Get(ctx, s.loadFeatured)
}

func (s *ProductService) loadFeatured(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindFeatured(ctx, catalog.DefaultFeaturedLimit)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// GetByID returns a product with its reviews
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.ToDetails())
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.ToChanges()); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product together with its reviews
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	product.MarkDeleted()
	s.publishEvents(ctx, product)
	return nil
}

// AddReview records the caller's review and returns the refreshed product
func (s *ProductService) AddReview(ctx context.Context, productID, userID uuid.UUID, req AddReviewRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := product.AddReview(user.ID, user.Name, req.Rating, req.Comment); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if err := shared.PublishPending(ctx, s.eventPublisher, product); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}
}
