package persistence

import (
	"context"
	"fmt"

	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order and its lines
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Create(&model.Items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		return nil
	})
}

// Update saves status, payment and tracking changes with an optimistic version check.
// Lines are immutable after placement and are not rewritten.
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	db := conn(ctx, r.db)
	result := db.Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Select("payment_status", "status", "tracking_number", "estimated_delivery",
			"delivered_at", "cancelled_at", "version", "updated_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.OrderModel{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return order.ErrNotFound
		}
		return errVersionConflict
	}
	return nil
}

// FindByID loads an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	err := conn(ctx, r.db).
		Preload("Items", orderItemsInPosition).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, order.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindByUser returns the user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	var orderModels []models.OrderModel
	err := conn(ctx, r.db).
		Preload("Items", orderItemsInPosition).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}
	return toOrders(orderModels), nil
}

// FindAll returns one page of orders, newest first, and the total match count
func (r *GormOrderRepository) FindAll(ctx context.Context, q order.Query) ([]order.Order, int64, error) {
	q.Normalize()
	db := conn(ctx, r.db)

	filter := func(db *gorm.DB) *gorm.DB {
		if q.Status != nil {
			return db.Where("status = ?", string(*q.Status))
		}
		return db
	}

	var total int64
	if err := filter(db.Model(&models.OrderModel{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if total == 0 {
		return []order.Order{}, 0, nil
	}

	var orderModels []models.OrderModel
	err := filter(db.Model(&models.OrderModel{})).
		Preload("Items", orderItemsInPosition).
		Order("created_at DESC, id DESC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return toOrders(orderModels), total, nil
}

func orderItemsInPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func toOrders(orderModels []models.OrderModel) []order.Order {
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders
}

var _ order.Repository = (*GormOrderRepository)(nil)
