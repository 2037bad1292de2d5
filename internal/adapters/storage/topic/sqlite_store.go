package topic

import (
	"context"
	"database/sql"
	"fmt"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/topic"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new topic store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const topicColumns = "id, slug, name, subject, grade, description"

// GetBySlug retrieves a Topic by its slug.
// PRE: slug is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (domain.Topic, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+topicColumns+" FROM topic WHERE slug = ?", slug)
	entity, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return domain.Topic{}, fmt.Errorf("topic not found: %w", err)
	}
	return entity, err
}

// Save persists a Topic to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update, keyed by slug)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Topic) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topic (id, slug, name, subject, grade, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name=excluded.name,
			subject=excluded.subject,
			grade=excluded.grade,
			description=excluded.description`,
		entity.ID,
		entity.Slug,
		entity.Name,
		entity.Subject,
		entity.Grade,
		entity.Description,
	)
	return err
}

// List retrieves topics matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by subject, grade, name
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Topic, error) {
	query := "SELECT " + topicColumns + " FROM topic"
	args := []any{}
	clauses := []string{}
	if filter.Subject != "" {
		clauses = append(clauses, "subject = ?")
		args = append(args, filter.Subject)
	}
	if filter.Grade > 0 {
		clauses = append(clauses, "grade = ?")
		args = append(args, filter.Grade)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY subject, grade, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Topic
	for rows.Next() {
		entity, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of topics.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM topic").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(scanner rowScanner) (domain.Topic, error) {
	var entity domain.Topic
	var description sql.NullString
	err := scanner.Scan(
		&entity.ID,
		&entity.Slug,
		&entity.Name,
		&entity.Subject,
		&entity.Grade,
		&description,
	)
	if err != nil {
		return domain.Topic{}, err
	}
	entity.Description = description.String
	return entity, nil
}
