package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/outbox"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const outboxColumns = "id, action_type, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message"

// GetByID retrieves an outbox entry by its ID.
// PRE: id is non-empty
// POST: Returns the entry or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+outboxColumns+" FROM outbox WHERE id = ?", id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return domain.Entry{}, fmt.Errorf("outbox entry not found: %w", err)
	}
	return entry, err
}

// Save persists an outbox entry to the database.
// PRE: entry has been validated
// POST: Entry is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entry domain.Entry) error {
	var lastAttempted any
	if !entry.LastAttemptedAt.IsZero() {
		lastAttempted = entry.LastAttemptedAt.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outbox (id, action_type, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			attempts=excluded.attempts,
			max_attempts=excluded.max_attempts,
			last_attempted_at=excluded.last_attempted_at,
			external_id=excluded.external_id,
			error_message=excluded.error_message`,
		entry.ID,
		entry.ActionType,
		entry.Payload,
		entry.Status,
		entry.Attempts,
		entry.MaxAttempts,
		lastAttempted,
		entry.CreatedAt.Format(time.RFC3339Nano),
		entry.ExternalID,
		entry.ErrorMessage,
	)
	return err
}

// ListPending returns entries awaiting processing (pending or retrying).
// PRE: limit > 0
// POST: Returns up to limit entries, oldest first
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+outboxColumns+" FROM outbox WHERE status IN (?, ?) ORDER BY created_at LIMIT ?",
		domain.StatusPending, domain.StatusRetrying, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListFailed returns entries that have exhausted their retries.
// PRE: limit > 0
// POST: Returns up to limit entries, most recently attempted first
func (s *SQLiteStore) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+outboxColumns+" FROM outbox WHERE status = ? AND attempts >= max_attempts ORDER BY last_attempted_at DESC LIMIT ?",
		domain.StatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Delete removes an outbox entry.
// PRE: id is non-empty and the entry is in a terminal state
// POST: Entry with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM outbox WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(scanner rowScanner) (domain.Entry, error) {
	var entry domain.Entry
	var lastAttempted, externalID, errorMessage sql.NullString
	var createdStr string
	err := scanner.Scan(
		&entry.ID,
		&entry.ActionType,
		&entry.Payload,
		&entry.Status,
		&entry.Attempts,
		&entry.MaxAttempts,
		&lastAttempted,
		&createdStr,
		&externalID,
		&errorMessage,
	)
	if err != nil {
		return domain.Entry{}, err
	}
	entry.ExternalID = externalID.String
	entry.ErrorMessage = errorMessage.String
	if entry.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Entry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if lastAttempted.Valid && lastAttempted.String != "" {
		if entry.LastAttemptedAt, err = storage.ParseStoredTime(lastAttempted.String); err != nil {
			return domain.Entry{}, fmt.Errorf("failed to parse last_attempted_at: %w", err)
		}
	}
	return entry, nil
}

func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
