package projections

import (
	"context"
	"log/slog"
	"time"

	"practicecraft/internal/domain/engagement"
	"practicecraft/internal/domain/session"
)

// WeekSessionStore defines the session store interface needed by the week tracker.
type WeekSessionStore interface {
	ListByChild(ctx context.Context, childID string) ([]session.Session, error)
}

// GetWeekTrackerQuery carries input for the week tracker projection.
type GetWeekTrackerQuery struct {
	ChildID string
	Now     time.Time // zero means time.Now()
}

// GetWeekTrackerDeps holds dependencies for the week tracker projection.
type GetWeekTrackerDeps struct {
	SessionStore WeekSessionStore
}

// WeekTrackerResult carries the 7 rendered days plus streak presentation state.
type WeekTrackerResult struct {
	Days          []engagement.WeekDay `json:"days"`
	CurrentStreak int                  `json:"current_streak"`
	Celebrating   bool                 `json:"celebrating"`
}

// QueryGetWeekTracker renders the Monday-to-Sunday tracker for a child.
// A fetch failure degrades to an all-inactive week rather than an error:
// the tracker is a supplementary widget and never blocks the page.
// PRE: ChildID is non-empty
// POST: Exactly 7 days, Monday first; Active only within the current week
func QueryGetWeekTracker(ctx context.Context, query GetWeekTrackerQuery, deps GetWeekTrackerDeps) WeekTrackerResult {
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}
	days := engagement.CurrentWeekDays(now)
	today := now.Format(engagement.DateLayout)

	sessions, err := deps.SessionStore.ListByChild(ctx, query.ChildID)
	if err != nil {
		slog.Warn("week_tracker_degraded", "child_id", query.ChildID, "error", err.Error())
		return WeekTrackerResult{Days: engagement.MarkWeek(days, nil, today)}
	}

	active := engagement.ActiveDates(sessions)
	current, _ := engagement.ComputeStreaks(active, now)

	return WeekTrackerResult{
		Days:          engagement.MarkWeek(days, active, today),
		CurrentStreak: current,
		Celebrating:   current >= engagement.CelebrationThreshold,
	}
}
