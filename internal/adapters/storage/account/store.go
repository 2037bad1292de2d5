package account

import (
	"context"

	domain "practicecraft/internal/domain/account"
)

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
	SaveActivationToken(ctx context.Context, token domain.ActivationToken) error
	GetActivationToken(ctx context.Context, token string) (domain.ActivationToken, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Role   string // optional: filter by role
	Limit  int
	Offset int
}
