package topic

import (
	"context"

	domain "practicecraft/internal/domain/topic"
)

// Store persists the Topic catalog.
type Store interface {
	GetBySlug(ctx context.Context, slug string) (domain.Topic, error)
	Save(ctx context.Context, value domain.Topic) error
	List(ctx context.Context, filter ListFilter) ([]domain.Topic, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Subject string // optional: filter by subject
	Grade   int    // optional: 0 means any grade
}
