package storage

import (
	"fmt"
	"strings"
	"time"
)

// ParseStoredTime parses a timestamp persisted by any store. SQLite stores
// text, and older rows may carry Go's default time formatting, so several
// layouts are tried in order.
// PRE: value is non-empty
// POST: Returns the parsed time or an error listing the unsupported format
func ParseStoredTime(value string) (time.Time, error) {
	if idx := strings.Index(value, " m="); idx != -1 {
		value = value[:idx]
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
