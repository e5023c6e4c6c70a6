package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	MinRating        = 1
	MaxRating        = 5
	maxCommentLength = 1000
)

// ErrAlreadyReviewed is returned when a user reviews the same product twice
var ErrAlreadyReviewed = shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this product")

// Review is a customer's rating of a product
type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// HasReviewed reports whether userID already left a review
func (p *Product) HasReviewed(userID uuid.UUID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends a review by userID and recomputes the rating summary
func (p *Product) AddReview(userID uuid.UUID, userName string, rating int, comment string) (*Review, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Reviewer is required")
	}
	if rating < MinRating || rating > MaxRating {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) > maxCommentLength {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 1000 characters")
	}
	if p.HasReviewed(userID) {
		return nil, ErrAlreadyReviewed
	}

	review := Review{
		ID:        uuid.New(),
		ProductID: p.ID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	p.Reviews = append(p.Reviews, review)
	p.recalculateRatings()
	p.touch()

	p.AddDomainEvent(NewProductReviewedEvent(p, &review))
	return &review, nil
}

// recalculateRatings derives the summary from the stored reviews.
// The average is rounded to one decimal place.
func (p *Product) recalculateRatings() {
	if len(p.Reviews) == 0 {
		p.Ratings = Ratings{}
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(p.Reviews))
	p.Ratings = Ratings{
		Average: math.Round(avg*10) / 10,
		Count:   len(p.Reviews),
	}
}
