package repository

import (
	"fmt"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/storage"
)

// classify maps constraint failures onto domain errors and wraps everything else.
func classify(op string, err error) error {
	switch {
	case storage.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	case storage.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
