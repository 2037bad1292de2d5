package projections

import (
	"context"
	"log/slog"

	"practicecraft/internal/domain/engagement"
)

// EngagementSnapshotStore defines the engagement store interface needed by the projection.
type EngagementSnapshotStore interface {
	GetByChild(ctx context.Context, childID string) (engagement.Snapshot, error)
}

// GetEngagementDeps holds dependencies for the engagement projection.
type GetEngagementDeps struct {
	EngagementStore EngagementSnapshotStore
}

// QueryGetEngagement returns the engagement snapshot for a child.
// Children with no recorded activity get a zero snapshot, and a store
// failure degrades to the same zero snapshot: callers render "no data yet"
// either way.
// PRE: childID is non-empty
// POST: Snapshot.ChildID == childID; counters >= 0
func QueryGetEngagement(ctx context.Context, childID string, deps GetEngagementDeps) engagement.Snapshot {
	snap, err := deps.EngagementStore.GetByChild(ctx, childID)
	if err != nil {
		slog.Warn("engagement_degraded", "child_id", childID, "error", err.Error())
		return engagement.Snapshot{ChildID: childID}
	}
	return snap
}
