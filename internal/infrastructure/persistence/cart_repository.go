package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/ecomstore/backend/internal/domain/cart"
	"github.com/ecomstore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUserID returns the user's cart, or an empty cart if none was saved yet
func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var model models.CartModel
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at ASC, product_id ASC")
		}).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&model).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if model.UserID == uuid.Nil {
		return cart.New(userID), nil
	}
	return model.ToDomain(), nil
}

// Save replaces the stored lines of the cart with c's lines
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	model := models.CartModelFromDomain(c)
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now()
	}

	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Omit(clause.Associations).Create(model).Error
		if err != nil {
			return fmt.Errorf("failed to save cart: %w", err)
		}
		if err := tx.Where("user_id = ?", c.UserID).Delete(&models.CartItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to save cart: %w", err)
		}
		if len(model.Items) == 0 {
			return nil
		}
		if err := tx.Create(&model.Items).Error; err != nil {
			return fmt.Errorf("failed to save cart items: %w", err)
		}
		return nil
	})
}

// Clear removes every line from the user's cart
func (r *GormCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return tx.Model(&models.CartModel{}).
			Where("user_id = ?", userID).
			Update("updated_at", time.Now()).Error
	})
}

var _ cart.Repository = (*GormCartRepository)(nil)
