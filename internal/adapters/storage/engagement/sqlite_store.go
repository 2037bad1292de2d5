package engagement

import (
	"context"
	"database/sql"
	"fmt"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/engagement"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new engagement store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByChild retrieves the engagement snapshot for a child.
// PRE: childID is non-empty
// POST: Returns the snapshot or an error if not found
func (s *SQLiteStore) GetByChild(ctx context.Context, childID string) (domain.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT child_id, total_stars, current_streak, longest_streak, total_worksheets_completed, last_activity_date
		FROM engagement WHERE child_id = ?`, childID)

	var snap domain.Snapshot
	var lastActivity sql.NullString
	err := row.Scan(
		&snap.ChildID,
		&snap.TotalStars,
		&snap.CurrentStreak,
		&snap.LongestStreak,
		&snap.TotalWorksheetsCompleted,
		&lastActivity,
	)
	if err == sql.ErrNoRows {
		return domain.Snapshot{}, fmt.Errorf("engagement snapshot not found: %w", err)
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.LastActivityDate = lastActivity.String
	return snap, nil
}

// Save persists an engagement snapshot, one row per child.
// PRE: snapshot has been validated
// POST: Snapshot is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, value domain.Snapshot) error {
	var lastActivity any
	if value.LastActivityDate != "" {
		lastActivity = value.LastActivityDate
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO engagement (child_id, total_stars, current_streak, longest_streak, total_worksheets_completed, last_activity_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(child_id) DO UPDATE SET
			total_stars=excluded.total_stars,
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			total_worksheets_completed=excluded.total_worksheets_completed,
			last_activity_date=excluded.last_activity_date`,
		value.ChildID,
		value.TotalStars,
		value.CurrentStreak,
		value.LongestStreak,
		value.TotalWorksheetsCompleted,
		lastActivity,
	)
	return err
}

// Delete removes a child's engagement snapshot.
// PRE: childID is non-empty
// POST: Snapshot for the child is removed
func (s *SQLiteStore) Delete(ctx context.Context, childID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM engagement WHERE child_id = ?", childID)
	return err
}
