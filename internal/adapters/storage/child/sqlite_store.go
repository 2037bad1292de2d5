package child

import (
	"context"
	"database/sql"
	"fmt"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/child"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new child store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const childColumns = "id, account_id, name, grade, subject, status"

// GetByID retrieves a Child by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Child, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+childColumns+" FROM child WHERE id = ?", id)
	entity, err := scanChild(row)
	if err == sql.ErrNoRows {
		return domain.Child{}, fmt.Errorf("child not found: %w", err)
	}
	return entity, err
}

// Save persists a Child to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Child) error {
	status := entity.Status
	if status == "" {
		status = domain.StatusActive
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO child (id, account_id, name, grade, subject, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			grade=excluded.grade,
			subject=excluded.subject,
			status=excluded.status`,
		entity.ID,
		entity.AccountID,
		entity.Name,
		entity.Grade,
		entity.Subject,
		status,
	)
	return err
}

// Delete removes a Child from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM child WHERE id = ?", id)
	return err
}

// ListByAccount retrieves all children belonging to an account.
// PRE: accountID is non-empty
// POST: Returns matching entities ordered by name
func (s *SQLiteStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Child, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+childColumns+" FROM child WHERE account_id = ? ORDER BY name", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Child
	for rows.Next() {
		entity, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of children.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM child").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(scanner rowScanner) (domain.Child, error) {
	var entity domain.Child
	var subject sql.NullString
	err := scanner.Scan(
		&entity.ID,
		&entity.AccountID,
		&entity.Name,
		&entity.Grade,
		&subject,
		&entity.Status,
	)
	if err != nil {
		return domain.Child{}, err
	}
	entity.Subject = subject.String
	return entity, nil
}
