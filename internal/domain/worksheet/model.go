package worksheet

import (
	"errors"
	"time"
)

// Status constants
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

// DefaultQuestionCount is the number of questions generated per worksheet.
const DefaultQuestionCount = 10

// Domain errors
var (
	ErrEmptyChildID  = errors.New("worksheet must be associated with a child")
	ErrEmptyTopic    = errors.New("worksheet topic slug is required")
	ErrEmptySubject  = errors.New("worksheet subject is required")
	ErrEmptyTitle    = errors.New("worksheet title is required")
	ErrInvalidStatus = errors.New("status must be one of: pending, ready, failed")
	ErrNoQuestions   = errors.New("worksheet must have at least one question")
)

// Worksheet is a generated practice sheet for a child.
type Worksheet struct {
	ID            string
	ChildID       string
	TopicSlug     string
	Subject       string
	Grade         int
	Title         string
	Content       string // markdown body, rendered with goldmark
	QuestionCount int
	Status        string
	CreatedAt     time.Time
}

// Validate checks if the Worksheet has valid data.
// PRE: Worksheet struct is populated
// POST: Returns nil if valid, error otherwise
func (w *Worksheet) Validate() error {
	if w.ChildID == "" {
		return ErrEmptyChildID
	}
	if w.TopicSlug == "" {
		return ErrEmptyTopic
	}
	if w.Subject == "" {
		return ErrEmptySubject
	}
	if w.Title == "" {
		return ErrEmptyTitle
	}
	if w.Status != StatusPending && w.Status != StatusReady && w.Status != StatusFailed {
		return ErrInvalidStatus
	}
	if w.QuestionCount < 1 {
		return ErrNoQuestions
	}
	return nil
}

// IsReady returns true if the worksheet finished generating.
// INVARIANT: Worksheet fields are not mutated
func (w *Worksheet) IsReady() bool {
	return w.Status == StatusReady
}
