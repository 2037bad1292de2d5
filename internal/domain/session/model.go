package session

import (
	"errors"
	"time"
)

// MaxStars is the maximum star award for a single session.
const MaxStars = 3

// Domain errors
var (
	ErrEmptyChildID     = errors.New("session must be associated with a child")
	ErrEmptyWorksheetID = errors.New("session must reference a worksheet")
	ErrNoTimestamp      = errors.New("session timestamp must be set")
	ErrBadCounts        = errors.New("correct count cannot exceed question count")
	ErrBadStars         = errors.New("stars must be between 0 and 3")
)

// Session is a timestamped worksheet-completion record. Week and streak
// logic uses only the date portion of CreatedAt.
type Session struct {
	ID            string
	ChildID       string
	WorksheetID   string
	CorrectCount  int
	QuestionCount int
	Stars         int
	CreatedAt     time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if s.ChildID == "" {
		return ErrEmptyChildID
	}
	if s.WorksheetID == "" {
		return ErrEmptyWorksheetID
	}
	if s.CreatedAt.IsZero() {
		return ErrNoTimestamp
	}
	if s.CorrectCount < 0 || s.QuestionCount < 1 || s.CorrectCount > s.QuestionCount {
		return ErrBadCounts
	}
	if s.Stars < 0 || s.Stars > MaxStars {
		return ErrBadStars
	}
	return nil
}

// Date returns the calendar date (YYYY-MM-DD) of the session, local time,
// truncation only.
// INVARIANT: Session fields are not mutated
func (s *Session) Date() string {
	return s.CreatedAt.Format("2006-01-02")
}

// Accuracy returns the fraction of questions answered correctly.
// PRE: QuestionCount >= 1
// POST: Returns a value in [0, 1]
func (s *Session) Accuracy() float64 {
	if s.QuestionCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.QuestionCount)
}

// StarsForAccuracy maps an accuracy fraction to a star award.
// PRE: accuracy is in [0, 1]
// POST: Returns 0..3
func StarsForAccuracy(accuracy float64) int {
	switch {
	case accuracy >= 0.9:
		return 3
	case accuracy >= 0.7:
		return 2
	case accuracy >= 0.5:
		return 1
	default:
		return 0
	}
}
