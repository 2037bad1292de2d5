package topic

import (
	"errors"
	"regexp"
	"strings"
)

// Subject constants
const (
	SubjectMath    = "math"
	SubjectEnglish = "english"
	SubjectScience = "science"
)

// ValidSubjects contains all valid subject values.
var ValidSubjects = []string{SubjectMath, SubjectEnglish, SubjectScience}

// Domain errors
var (
	ErrEmptyName      = errors.New("topic name is required")
	ErrEmptySlug      = errors.New("topic slug is required")
	ErrInvalidSlug    = errors.New("topic slug must be lowercase letters, digits and hyphens")
	ErrInvalidSubject = errors.New("subject must be one of: math, english, science")
	ErrInvalidGrade   = errors.New("grade must be between 1 and 8")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Topic is a curriculum catalog entry. Seeded at startup, read-only at runtime.
type Topic struct {
	ID          string
	Slug        string // URL-safe identifier, e.g. "fractions-basics"
	Name        string
	Subject     string
	Grade       int
	Description string
}

// Validate checks if the Topic has valid data.
// PRE: Topic struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Topic) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Slug == "" {
		return ErrEmptySlug
	}
	if !slugPattern.MatchString(t.Slug) {
		return ErrInvalidSlug
	}
	if !IsValidSubject(t.Subject) {
		return ErrInvalidSubject
	}
	if t.Grade < 1 || t.Grade > 8 {
		return ErrInvalidGrade
	}
	return nil
}

// IsValidSubject reports whether subject is a known subject value.
func IsValidSubject(subject string) bool {
	for _, s := range ValidSubjects {
		if s == subject {
			return true
		}
	}
	return false
}

// Slugify converts a topic name into a URL-safe slug.
// PRE: name is non-empty
// POST: Returns a string matching the slug pattern, or "" if nothing remains
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
