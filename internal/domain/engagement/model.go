package engagement

import (
	"errors"
	"time"

	"practicecraft/internal/domain/session"
)

// CelebrationThreshold is the current streak at which the tracker shows the
// celebratory message instead of the plain count.
const CelebrationThreshold = 7

// Domain errors
var (
	ErrEmptyChildID   = errors.New("engagement snapshot must be associated with a child")
	ErrNegativeCounts = errors.New("engagement counters cannot be negative")
)

// Snapshot is the per-child engagement summary. Persisted, recomputed
// whenever a session is recorded.
type Snapshot struct {
	ChildID                  string `json:"child_id"`
	TotalStars               int    `json:"total_stars"`
	CurrentStreak            int    `json:"current_streak"`
	LongestStreak            int    `json:"longest_streak"`
	TotalWorksheetsCompleted int    `json:"total_worksheets_completed"`
	LastActivityDate         string `json:"last_activity_date"` // YYYY-MM-DD, empty when no activity
}

// Validate checks if the Snapshot has valid data.
// PRE: Snapshot struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Snapshot) Validate() error {
	if s.ChildID == "" {
		return ErrEmptyChildID
	}
	if s.TotalStars < 0 || s.CurrentStreak < 0 || s.LongestStreak < 0 || s.TotalWorksheetsCompleted < 0 {
		return ErrNegativeCounts
	}
	return nil
}

// HasActivity returns true if the child has ever completed a worksheet.
// INVARIANT: Snapshot fields are not mutated
func (s *Snapshot) HasActivity() bool {
	return s.LastActivityDate != ""
}

// IsCelebrating returns true when the current streak has reached a full week.
// INVARIANT: Snapshot fields are not mutated
func (s *Snapshot) IsCelebrating() bool {
	return s.CurrentStreak >= CelebrationThreshold
}

// Recompute rebuilds the snapshot from the full session history.
// PRE: ChildID is set; sessions belong to this child
// POST: All counters and streaks reflect the given history as of now
func (s *Snapshot) Recompute(sessions []session.Session, now time.Time) {
	s.TotalStars = 0
	s.TotalWorksheetsCompleted = len(sessions)
	s.LastActivityDate = ""
	for _, sess := range sessions {
		s.TotalStars += sess.Stars
		if d := sess.Date(); d > s.LastActivityDate {
			s.LastActivityDate = d
		}
	}
	s.CurrentStreak, s.LongestStreak = ComputeStreaks(ActiveDates(sessions), now)
}
