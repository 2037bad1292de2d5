package projections

import (
	"context"
	"log/slog"

	"practicecraft/internal/domain/insight"
)

// InsightReportStore defines the insight store interface needed by the projection.
type InsightReportStore interface {
	GetLatestByChild(ctx context.Context, childID string) (insight.Report, error)
}

// GetChildReportDeps holds dependencies for the child report projection.
type GetChildReportDeps struct {
	InsightStore InsightReportStore
}

// ChildReportResult is the wire shape of the insight card payload.
// Recommendation is null when the report carries none. HasData is false
// both when no report exists and when the lookup failed: the card renders
// the same empty state for either.
type ChildReportResult struct {
	HasData        bool                    `json:"has_data"`
	ChildName      string                  `json:"child_name,omitempty"`
	ReportText     string                  `json:"report_text,omitempty"`
	Recommendation *insight.Recommendation `json:"recommendation"`
}

// QueryGetChildReport returns the latest insight report for a child.
// PRE: childID is non-empty
// POST: HasData implies non-empty ReportText
func QueryGetChildReport(ctx context.Context, childID string, deps GetChildReportDeps) ChildReportResult {
	report, err := deps.InsightStore.GetLatestByChild(ctx, childID)
	if err != nil {
		slog.Warn("child_report_degraded", "child_id", childID, "error", err.Error())
		return ChildReportResult{}
	}

	return ChildReportResult{
		HasData:        true,
		ChildName:      report.ChildName,
		ReportText:     report.ReportText,
		Recommendation: report.Recommendation,
	}
}
