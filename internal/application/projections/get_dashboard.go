package projections

import (
	"context"
	"fmt"
	"time"

	"practicecraft/internal/domain/account"
	"practicecraft/internal/domain/child"
	"practicecraft/internal/domain/engagement"
)

// DashboardChildStore defines the child store interface needed by the dashboard projection.
type DashboardChildStore interface {
	ListByAccount(ctx context.Context, accountID string) ([]child.Child, error)
}

// DashboardCounter counts rows for the admin overview.
type DashboardCounter interface {
	Count(ctx context.Context) (int, error)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Role      string // admin, parent, child
	AccountID string
	Now       time.Time // zero means time.Now()
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	ChildStore      DashboardChildStore
	SessionStore    WeekSessionStore
	EngagementStore EngagementSnapshotStore
	InsightStore    InsightReportStore

	// Admin counters; nil skips the corresponding stat
	AccountCounter   DashboardCounter
	WorksheetCounter DashboardCounter
	FeedbackCounter  DashboardCounter
}

// ChildDashboard is one child's card on the parent dashboard.
type ChildDashboard struct {
	Child    child.Child
	Week     WeekTrackerResult
	Snapshot engagement.Snapshot
	Report   ChildReportResult
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Role     string
	Children []ChildDashboard

	// Admin
	AccountCount   int
	WorksheetCount int
	FeedbackCount  int
}

// QueryGetDashboard aggregates dashboard data based on the user's role.
// Parent (and impersonated child) views get per-child cards; admin gets
// totals. Supplementary widgets degrade to empty states on store errors
// inside their own projections.
// PRE: Role and AccountID are set from the authenticated session
// POST: Children only populated for parent/child roles
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	result := DashboardResult{Role: query.Role}
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch query.Role {
	case account.RoleAdmin:
		result.AccountCount = countOrZero(ctx, deps.AccountCounter)
		result.WorksheetCount = countOrZero(ctx, deps.WorksheetCounter)
		result.FeedbackCount = countOrZero(ctx, deps.FeedbackCounter)
		return result, nil

	case account.RoleParent, account.RoleChild:
		children, err := deps.ChildStore.ListByAccount(ctx, query.AccountID)
		if err != nil {
			return DashboardResult{}, fmt.Errorf("load children: %w", err)
		}
		for _, c := range children {
			if c.IsArchived() {
				continue
			}
			result.Children = append(result.Children, ChildDashboard{
				Child: c,
				Week: QueryGetWeekTracker(ctx, GetWeekTrackerQuery{ChildID: c.ID, Now: now},
					GetWeekTrackerDeps{SessionStore: deps.SessionStore}),
				Snapshot: QueryGetEngagement(ctx, c.ID, GetEngagementDeps{EngagementStore: deps.EngagementStore}),
				Report:   QueryGetChildReport(ctx, c.ID, GetChildReportDeps{InsightStore: deps.InsightStore}),
			})
		}
		return result, nil

	default:
		return DashboardResult{}, fmt.Errorf("unknown role: %s", query.Role)
	}
}

func countOrZero(ctx context.Context, counter DashboardCounter) int {
	if counter == nil {
		return 0
	}
	n, err := counter.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}
