package session

import (
	"context"

	domain "practicecraft/internal/domain/session"
)

// Store persists practice Session records.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, value domain.Session) error
	ListByChild(ctx context.Context, childID string) ([]domain.Session, error)
	GetByWorksheet(ctx context.Context, worksheetID string) (domain.Session, error)
	Count(ctx context.Context) (int, error)
}
