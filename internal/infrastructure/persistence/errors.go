package persistence

import (
	"errors"

	"github.com/ecomstore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateNotFound maps gorm.ErrRecordNotFound to notFound and leaves other errors untouched
func translateNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// isDuplicateKey reports whether err is a unique constraint violation
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

var errVersionConflict = shared.ErrConcurrencyConflict
