package worksheet

import (
	"context"

	domain "practicecraft/internal/domain/worksheet"
)

// Store persists Worksheet state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Worksheet, error)
	Save(ctx context.Context, value domain.Worksheet) error
	Delete(ctx context.Context, id string) error
	ListByChild(ctx context.Context, childID string, limit int) ([]domain.Worksheet, error)
	Count(ctx context.Context) (int, error)
}
