package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/ecomstore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProductNotFound is returned when a product id does not exist
var ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID loads a product with its reviews, oldest review first
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	err := conn(ctx, r.db).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, ErrProductNotFound)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads products without reviews; ids that do not exist are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var productModels []models.ProductModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toProducts(productModels), nil
}

// Search returns one page of products matching q and the total number of matches
func (r *GormProductRepository) Search(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, int64, error) {
	q = q.Normalize()
	db := conn(ctx, r.db)
	query := r.applyQuery(db.Model(&models.ProductModel{}), q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	if total == 0 {
		return []catalog.Product{}, 0, nil
	}

	var productModels []models.ProductModel
	err := r.applyQuery(db.Model(&models.ProductModel{}), q).
		Order(sortClause(q.Sort)).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&productModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return toProducts(productModels), total, nil
}

// FindFeatured returns active featured products, best rated first
func (r *GormProductRepository) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	if limit <= 0 {
		limit = catalog.DefaultFeaturedLimit
	}
	var productModels []models.ProductModel
	err := conn(ctx, r.db).
		Where("featured = ? AND is_active = ?", true, true).
		Order("rating_average DESC, id ASC").
		Limit(limit).
		Find(&productModels).Error
	if err != nil {
		return nil, err
	}
	return toProducts(productModels), nil
}

// Save inserts a product still at version 1 and otherwise updates it with an
// optimistic version check.
// Reviews not yet stored are inserted in the same transaction.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)

	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if product.Version <= 1 {
			if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
		} else {
			result := tx.Model(&models.ProductModel{}).
				Where("id = ? AND version = ?", product.ID, product.Version-1).
				Select("*").
				Omit("id", "created_at", clause.Associations).
				Updates(model)
			if result.Error != nil {
				return fmt.Errorf("failed to update product: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return r.missingOrConflict(tx, product.ID)
			}
		}

		if len(product.Reviews) == 0 {
			return nil
		}
		reviews := make([]models.ReviewModel, 0, len(product.Reviews))
		for _, rv := range product.Reviews {
			reviews = append(reviews, models.ReviewModelFromDomain(rv))
		}
		err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
			Create(&reviews).Error
		if isDuplicateKey(err) {
			return catalog.ErrAlreadyReviewed
		}
		return err
	})
}

// Delete removes a product and its reviews
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ReviewModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

// DecrementStock removes qty units only if at least qty are in stock
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	db := conn(ctx, r.db)
	result := db.Model(&models.ProductModel{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return shared.ErrInsufficientStock
	}
	return nil
}

// IncrementStock returns qty units to stock
func (r *GormProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := conn(ctx, r.db).Model(&models.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to increment stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// applyQuery adds the listing filters of q
func (r *GormProductRepository) applyQuery(db *gorm.DB, q catalog.ProductQuery) *gorm.DB {
	if !q.IncludeInactive {
		db = db.Where("is_active = ?", true)
	}
	if q.Category != "" {
		db = db.Where("category = ?", string(q.Category))
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		if IsPostgres(r.db) {
			db = db.Where(
				"to_tsvector('english', name || ' ' || description || ' ' || coalesce(brand, '') || ' ' || tags) @@ plainto_tsquery('english', ?)",
				search,
			)
		} else {
			like := "%" + strings.ToLower(search) + "%"
			db = db.Where(
				"(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(tags) LIKE ?)",
				like, like, like, like,
			)
		}
	}
	return db
}

// sortClause maps a listing sort to ORDER BY with a stable id tiebreaker
func sortClause(s catalog.ProductSort) string {
	switch s {
	case catalog.SortPriceAsc:
		return "price ASC, id ASC"
	case catalog.SortPriceDesc:
		return "price DESC, id ASC"
	case catalog.SortRating:
		return "rating_average DESC, rating_count DESC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

func (r *GormProductRepository) missingOrConflict(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return errVersionConflict
}

func toProducts(productModels []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
