package feedback

import (
	"errors"
	"strings"
	"time"
)

// MaxMessageLength caps feedback submissions.
const MaxMessageLength = 4000

// Category constants
const (
	CategoryBug        = "bug"
	CategorySuggestion = "suggestion"
	CategoryContent    = "content"
)

// Status constants
const (
	StatusNew     = "new"
	StatusTriaged = "triaged"
	StatusClosed  = "closed"
)

// ValidCategories contains all valid category values.
var ValidCategories = []string{CategoryBug, CategorySuggestion, CategoryContent}

// Domain errors
var (
	ErrEmptyMessage    = errors.New("feedback message is required")
	ErrMessageTooLong  = errors.New("feedback message cannot exceed 4000 characters")
	ErrInvalidCategory = errors.New("category must be one of: bug, suggestion, content")
	ErrInvalidStatus   = errors.New("status must be one of: new, triaged, closed")
)

// Feedback is a parent-submitted problem report or suggestion.
type Feedback struct {
	ID        string
	AccountID string // empty for anonymous submissions
	Category  string
	Message   string
	Status    string
	CreatedAt time.Time
}

// Validate checks if the Feedback has valid data.
// PRE: Feedback struct is populated
// POST: Returns nil if valid, error otherwise
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.Message) == "" {
		return ErrEmptyMessage
	}
	if len(f.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !isValidCategory(f.Category) {
		return ErrInvalidCategory
	}
	if f.Status != StatusNew && f.Status != StatusTriaged && f.Status != StatusClosed {
		return ErrInvalidStatus
	}
	return nil
}

func isValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}
