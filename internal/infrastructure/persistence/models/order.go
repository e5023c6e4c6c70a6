package models

import (
	"time"

	"github.com/ecomstore/backend/internal/domain/order"
	"github.com/ecomstore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate.
// The shipping address is stored as a JSON document.
type OrderModel struct {
	AggregateModel
	OrderNumber       string              `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID            uuid.UUID           `gorm:"type:uuid;not null;index"`
	ShippingAddress   valueobject.Address `gorm:"type:text;not null"`
	PaymentMethod     string              `gorm:"type:varchar(20);not null"`
	PaymentStatus     string              `gorm:"type:varchar(20);not null;default:'pending'"`
	Status            string              `gorm:"type:varchar(20);not null;default:'pending';index"`
	ShippingFee       decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Tax               decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount       decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	TrackingNumber    string              `gorm:"type:varchar(100)"`
	EstimatedDelivery *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	Items             []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one snapshotted order line
type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(100);not null"`
	Image     string          `gorm:"type:text"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the model to an Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		Items:             make([]order.Item, 0, len(m.Items)),
		ShippingAddress:   m.ShippingAddress,
		PaymentMethod:     order.PaymentMethod(m.PaymentMethod),
		PaymentStatus:     order.PaymentStatus(m.PaymentStatus),
		Status:            order.Status(m.Status),
		ShippingFee:       m.ShippingFee,
		Tax:               m.Tax,
		TotalAmount:       m.TotalAmount,
		TrackingNumber:    m.TrackingNumber,
		EstimatedDelivery: m.EstimatedDelivery,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return o
}

// OrderModelFromDomain builds the model for o including its lines
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		ShippingAddress:   o.ShippingAddress,
		PaymentMethod:     string(o.PaymentMethod),
		PaymentStatus:     string(o.PaymentStatus),
		Status:            string(o.Status),
		ShippingFee:       o.ShippingFee,
		Tax:               o.Tax,
		TotalAmount:       o.TotalAmount,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		Items:             make([]OrderItemModel, 0, len(o.Items)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, it := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			OrderID:   o.ID,
			Position:  i,
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return m
}
