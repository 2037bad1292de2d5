package feedback

import (
	"context"

	domain "practicecraft/internal/domain/feedback"
)

// Store persists Feedback submissions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Feedback, error)
	Save(ctx context.Context, value domain.Feedback) error
	List(ctx context.Context, limit int) ([]domain.Feedback, error)
	Count(ctx context.Context) (int, error)
}
