package repository

import (
	"errors"
	"fmt"
	"strings"

	"Articulate/apperr"

	"gorm.io/gorm"
)

// translate maps driver uniqueness violations onto apperr.ErrDuplicateKey.
// Drivers without an error translator are caught by message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateMessage(err.Error()) {
		return fmt.Errorf("%w: %v", apperr.ErrDuplicateKey, err)
	}
	return err
}

func isDuplicateMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// notFound converts gorm.ErrRecordNotFound into a named apperr.NotFoundError.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

// ForOwner returns a GORM scope that filters by user_id.
func ForOwner(ownerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", ownerID)
	}
}
