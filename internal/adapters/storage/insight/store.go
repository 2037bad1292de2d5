package insight

import (
	"context"

	domain "practicecraft/internal/domain/insight"
)

// Store persists insight reports. One current report per child.
type Store interface {
	GetLatestByChild(ctx context.Context, childID string) (domain.Report, error)
	Save(ctx context.Context, value domain.Report) error
	DeleteByChild(ctx context.Context, childID string) error
}
