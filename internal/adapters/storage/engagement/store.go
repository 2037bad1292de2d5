package engagement

import (
	"context"

	domain "practicecraft/internal/domain/engagement"
)

// Store persists per-child engagement snapshots.
type Store interface {
	GetByChild(ctx context.Context, childID string) (domain.Snapshot, error)
	Save(ctx context.Context, value domain.Snapshot) error
	Delete(ctx context.Context, childID string) error
}
