package worksheet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/worksheet"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new worksheet store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const worksheetColumns = "id, child_id, topic_slug, subject, grade, title, content, question_count, status, created_at"

// GetByID retrieves a Worksheet by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Worksheet, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+worksheetColumns+" FROM worksheet WHERE id = ?", id)
	entity, err := scanWorksheet(row)
	if err == sql.ErrNoRows {
		return domain.Worksheet{}, fmt.Errorf("worksheet not found: %w", err)
	}
	return entity, err
}

// Save persists a Worksheet to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Worksheet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worksheet (id, child_id, topic_slug, subject, grade, title, content, question_count, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			content=excluded.content,
			question_count=excluded.question_count,
			status=excluded.status`,
		entity.ID,
		entity.ChildID,
		entity.TopicSlug,
		entity.Subject,
		entity.Grade,
		entity.Title,
		entity.Content,
		entity.QuestionCount,
		entity.Status,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes a Worksheet from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM worksheet WHERE id = ?", id)
	return err
}

// ListByChild retrieves worksheets for a child, newest first.
// PRE: childID is non-empty
// POST: Returns up to limit entities (all when limit <= 0)
func (s *SQLiteStore) ListByChild(ctx context.Context, childID string, limit int) ([]domain.Worksheet, error) {
	query := "SELECT " + worksheetColumns + " FROM worksheet WHERE child_id = ? ORDER BY created_at DESC"
	args := []any{childID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Worksheet
	for rows.Next() {
		entity, err := scanWorksheet(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of worksheets.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM worksheet").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorksheet(scanner rowScanner) (domain.Worksheet, error) {
	var entity domain.Worksheet
	var createdStr string
	err := scanner.Scan(
		&entity.ID,
		&entity.ChildID,
		&entity.TopicSlug,
		&entity.Subject,
		&entity.Grade,
		&entity.Title,
		&entity.Content,
		&entity.QuestionCount,
		&entity.Status,
		&createdStr,
	)
	if err != nil {
		return domain.Worksheet{}, err
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Worksheet{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}
