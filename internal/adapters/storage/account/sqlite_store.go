package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const accountColumns = "id, email, password_hash, role, status, created_at, failed_logins, locked_until, password_change_required"

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	return scanAccount(row)
}

// GetByEmail retrieves an Account by its email.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ?", email)
	return scanAccount(row)
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	var lockedVal any
	if !entity.LockedUntil.IsZero() {
		lockedVal = entity.LockedUntil.Format(time.RFC3339Nano)
	}
	changeRequired := 0
	if entity.PasswordChangeRequired {
		changeRequired = 1
	}
	status := entity.Status
	if status == "" {
		status = domain.StatusActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (id, email, password_hash, role, status, created_at, failed_logins, locked_until, password_change_required)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			password_hash=excluded.password_hash,
			role=excluded.role,
			status=excluded.status,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until,
			password_change_required=excluded.password_change_required`,
		entity.ID,
		entity.Email,
		entity.PasswordHash,
		entity.Role,
		status,
		entity.CreatedAt.Format(time.RFC3339Nano),
		entity.FailedLogins,
		lockedVal,
		changeRequired,
	)
	return err
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves accounts matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	query := "SELECT " + accountColumns + " FROM account"
	args := []any{}
	if filter.Role != "" {
		query += " WHERE role = ?"
		args = append(args, filter.Role)
	}
	query += " ORDER BY created_at LIMIT ? OFFSET ?"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccountRows(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}

// SaveActivationToken persists an activation token.
// PRE: token has non-empty Token and AccountID
// POST: Token is persisted (insert or update)
func (s *SQLiteStore) SaveActivationToken(ctx context.Context, token domain.ActivationToken) error {
	used := 0
	if token.Used {
		used = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activation_token (id, account_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET used=excluded.used`,
		token.ID,
		token.AccountID,
		token.Token,
		token.ExpiresAt.Format(time.RFC3339Nano),
		used,
		token.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// GetActivationToken retrieves an activation token by its token string.
// PRE: token is non-empty
// POST: Returns the token or an error if not found
func (s *SQLiteStore) GetActivationToken(ctx context.Context, token string) (domain.ActivationToken, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, account_id, token, expires_at, used, created_at FROM activation_token WHERE token = ?", token)

	var t domain.ActivationToken
	var expiresStr, createdStr string
	var used int
	err := row.Scan(&t.ID, &t.AccountID, &t.Token, &expiresStr, &used, &createdStr)
	if err == sql.ErrNoRows {
		return domain.ActivationToken{}, fmt.Errorf("activation token not found: %w", err)
	}
	if err != nil {
		return domain.ActivationToken{}, err
	}
	t.Used = used != 0
	if t.ExpiresAt, err = storage.ParseStoredTime(expiresStr); err != nil {
		return domain.ActivationToken{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if t.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.ActivationToken{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return t, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	entity, err := scanAccountFrom(row)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

func scanAccountRows(rows *sql.Rows) (domain.Account, error) {
	return scanAccountFrom(rows)
}

func scanAccountFrom(scanner rowScanner) (domain.Account, error) {
	var entity domain.Account
	var createdStr string
	var lockedStr sql.NullString
	var changeRequired int
	err := scanner.Scan(
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&entity.Role,
		&entity.Status,
		&createdStr,
		&entity.FailedLogins,
		&lockedStr,
		&changeRequired,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.PasswordChangeRequired = changeRequired != 0
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if lockedStr.Valid && lockedStr.String != "" {
		if entity.LockedUntil, err = storage.ParseStoredTime(lockedStr.String); err != nil {
			return domain.Account{}, fmt.Errorf("failed to parse locked_until: %w", err)
		}
	}
	return entity, nil
}
