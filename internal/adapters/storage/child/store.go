package child

import (
	"context"

	domain "practicecraft/internal/domain/child"
)

// Store persists Child state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Child, error)
	Save(ctx context.Context, value domain.Child) error
	Delete(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.Child, error)
	Count(ctx context.Context) (int, error)
}
