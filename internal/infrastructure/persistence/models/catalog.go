package models

import (
	"time"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Name          string           `gorm:"type:varchar(100);not null"`
	Description   string           `gorm:"type:text;not null"`
	Price         decimal.Decimal  `gorm:"type:decimal(12,2);not null;index"`
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Images        StringList       `gorm:"type:text;not null"`
	Category      string           `gorm:"type:varchar(20);not null;index"`
	Brand         string           `gorm:"type:varchar(100)"`
	Stock         int              `gorm:"not null;default:0"`
	Featured      bool             `gorm:"not null;default:false;index"`
	IsActive      bool             `gorm:"not null;default:true;index"`
	RatingAverage float64          `gorm:"not null;default:0"`
	RatingCount   int              `gorm:"not null;default:0"`
	Tags          StringList       `gorm:"type:text;not null"`
	Reviews       []ReviewModel    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a Product. Reviews are included when loaded.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		OriginalPrice:     m.OriginalPrice,
		Images:            []string(m.Images),
		Category:          catalog.Category(m.Category),
		Brand:             m.Brand,
		Stock:             m.Stock,
		Featured:          m.Featured,
		IsActive:          m.IsActive,
		Ratings:           catalog.Ratings{Average: m.RatingAverage, Count: m.RatingCount},
		Tags:              []string(m.Tags),
		Reviews:           make([]catalog.Review, 0, len(m.Reviews)),
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for i := range m.Reviews {
		p.Reviews = append(p.Reviews, m.Reviews[i].ToDomain())
	}
	return p
}

// ProductModelFromDomain builds the model for p without its reviews
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Images:        StringList(p.Images),
		Category:      string(p.Category),
		Brand:         p.Brand,
		Stock:         p.Stock,
		Featured:      p.Featured,
		IsActive:      p.IsActive,
		RatingAverage: p.Ratings.Average,
		RatingCount:   p.Ratings.Count,
		Tags:          StringList(p.Tags),
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// ReviewModel is the persistence model for a product review.
// A user can review a product once.
type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user,priority:2"`
	UserName  string    `gorm:"type:varchar(50);not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the model to a Review
func (m *ReviewModel) ToDomain() catalog.Review {
	return catalog.Review{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

// ReviewModelFromDomain builds the model for r
func ReviewModelFromDomain(r catalog.Review) ReviewModel {
	return ReviewModel{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
