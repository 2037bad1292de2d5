package insight

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/insight"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new insight store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetLatestByChild retrieves the most recent report for a child.
// PRE: childID is non-empty
// POST: Returns the report or an error if not found
func (s *SQLiteStore) GetLatestByChild(ctx context.Context, childID string) (domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, child_id, child_name, report_text, rec_topic_slug, rec_topic_name, rec_reason, rec_subject, generated_at
		FROM insight_report WHERE child_id = ? ORDER BY generated_at DESC LIMIT 1`, childID)

	var report domain.Report
	var recSlug, recName, recReason, recSubject sql.NullString
	var generatedStr string
	err := row.Scan(
		&report.ID,
		&report.ChildID,
		&report.ChildName,
		&report.ReportText,
		&recSlug,
		&recName,
		&recReason,
		&recSubject,
		&generatedStr,
	)
	if err == sql.ErrNoRows {
		return domain.Report{}, fmt.Errorf("insight report not found: %w", err)
	}
	if err != nil {
		return domain.Report{}, err
	}
	if recSlug.Valid && recSlug.String != "" {
		report.Recommendation = &domain.Recommendation{
			TopicSlug: recSlug.String,
			TopicName: recName.String,
			Reason:    recReason.String,
			Subject:   recSubject.String,
		}
	}
	if report.GeneratedAt, err = storage.ParseStoredTime(generatedStr); err != nil {
		return domain.Report{}, fmt.Errorf("failed to parse generated_at: %w", err)
	}
	return report, nil
}

// Save persists an insight report.
// PRE: report has been validated
// POST: Report is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, value domain.Report) error {
	var recSlug, recName, recReason, recSubject any
	if value.Recommendation != nil {
		recSlug = value.Recommendation.TopicSlug
		recName = value.Recommendation.TopicName
		recReason = value.Recommendation.Reason
		recSubject = value.Recommendation.Subject
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO insight_report (id, child_id, child_name, report_text, rec_topic_slug, rec_topic_name, rec_reason, rec_subject, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			child_name=excluded.child_name,
			report_text=excluded.report_text,
			rec_topic_slug=excluded.rec_topic_slug,
			rec_topic_name=excluded.rec_topic_name,
			rec_reason=excluded.rec_reason,
			rec_subject=excluded.rec_subject,
			generated_at=excluded.generated_at`,
		value.ID,
		value.ChildID,
		value.ChildName,
		value.ReportText,
		recSlug,
		recName,
		recReason,
		recSubject,
		value.GeneratedAt.Format(time.RFC3339Nano),
	)
	return err
}

// DeleteByChild removes all reports for a child.
// PRE: childID is non-empty
// POST: Reports for the child are removed
func (s *SQLiteStore) DeleteByChild(ctx context.Context, childID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM insight_report WHERE child_id = ?", childID)
	return err
}
