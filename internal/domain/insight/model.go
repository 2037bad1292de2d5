package insight

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyChildID = errors.New("report must be associated with a child")
	ErrEmptyText    = errors.New("report text is required")
)

// Recommendation is a single suggested next topic surfaced alongside a report.
type Recommendation struct {
	TopicSlug string `json:"topic_slug"`
	TopicName string `json:"topic_name"`
	Reason    string `json:"reason"`
	Subject   string `json:"subject"`
}

// Report is a per-child textual insight with an optional recommendation.
type Report struct {
	ID             string
	ChildID        string
	ChildName      string
	ReportText     string // markdown
	Recommendation *Recommendation
	GeneratedAt    time.Time
}

// Validate checks if the Report has valid data.
// PRE: Report struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Report) Validate() error {
	if r.ChildID == "" {
		return ErrEmptyChildID
	}
	if r.ReportText == "" {
		return ErrEmptyText
	}
	return nil
}

// HasRecommendation returns true if the report carries a next-topic suggestion.
// INVARIANT: Report fields are not mutated
func (r *Report) HasRecommendation() bool {
	return r.Recommendation != nil && r.Recommendation.TopicSlug != ""
}
