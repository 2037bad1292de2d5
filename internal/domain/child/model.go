package child

import (
	"errors"
	"strings"
)

// Grade bounds for learner profiles.
const (
	MinGrade = 1
	MaxGrade = 8
)

// Status constants
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Domain errors
var (
	ErrEmptyName      = errors.New("child name is required")
	ErrEmptyAccountID = errors.New("child must belong to an account")
	ErrInvalidGrade   = errors.New("grade must be between 1 and 8")
	ErrInvalidStatus  = errors.New("status must be one of: active, archived")
)

// Child is a learner profile owned by a parent account.
type Child struct {
	ID        string
	AccountID string
	Name      string
	Grade     int
	Subject   string // preferred subject, optional
	Status    string
}

// Validate checks if the Child has valid data.
// PRE: Child struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Child) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.AccountID == "" {
		return ErrEmptyAccountID
	}
	if c.Grade < MinGrade || c.Grade > MaxGrade {
		return ErrInvalidGrade
	}
	if c.Status != StatusActive && c.Status != StatusArchived {
		return ErrInvalidStatus
	}
	return nil
}

// IsArchived returns true if the child profile has been archived.
// INVARIANT: Child fields are not mutated
func (c *Child) IsArchived() bool {
	return c.Status == StatusArchived
}
