package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is a single schema version step.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order; version 1 is the baseline schema.
var migrations = []migration{
	{
		version: 1,
		sql: `
		CREATE TABLE IF NOT EXISTS account (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TEXT,
			password_change_required INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS activation_token (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			expires_at TEXT NOT NULL,
			used INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (account_id) REFERENCES account(id)
		);

		CREATE TABLE IF NOT EXISTS child (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			name TEXT NOT NULL,
			grade INTEGER NOT NULL,
			subject TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			FOREIGN KEY (account_id) REFERENCES account(id)
		);

		CREATE TABLE IF NOT EXISTS topic (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			subject TEXT NOT NULL,
			grade INTEGER NOT NULL,
			description TEXT
		);

		CREATE TABLE IF NOT EXISTS worksheet (
			id TEXT PRIMARY KEY,
			child_id TEXT NOT NULL,
			topic_slug TEXT NOT NULL,
			subject TEXT NOT NULL,
			grade INTEGER NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			question_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES child(id)
		);

		CREATE TABLE IF NOT EXISTS practice_session (
			id TEXT PRIMARY KEY,
			child_id TEXT NOT NULL,
			worksheet_id TEXT NOT NULL,
			correct_count INTEGER NOT NULL DEFAULT 0,
			question_count INTEGER NOT NULL DEFAULT 0,
			stars INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES child(id),
			FOREIGN KEY (worksheet_id) REFERENCES worksheet(id)
		);

		CREATE TABLE IF NOT EXISTS engagement (
			child_id TEXT PRIMARY KEY,
			total_stars INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			total_worksheets_completed INTEGER NOT NULL DEFAULT 0,
			last_activity_date TEXT,
			FOREIGN KEY (child_id) REFERENCES child(id)
		);

		CREATE TABLE IF NOT EXISTS insight_report (
			id TEXT PRIMARY KEY,
			child_id TEXT NOT NULL,
			child_name TEXT NOT NULL,
			report_text TEXT NOT NULL,
			rec_topic_slug TEXT,
			rec_topic_name TEXT,
			rec_reason TEXT,
			rec_subject TEXT,
			generated_at TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES child(id)
		);

		CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			account_id TEXT,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'new',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS outbox (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			last_attempted_at TEXT,
			created_at TEXT NOT NULL,
			external_id TEXT,
			error_message TEXT
		);
		`,
	},
	{
		version: 2,
		sql: `
		CREATE INDEX IF NOT EXISTS idx_session_child_date ON practice_session(child_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_worksheet_child ON worksheet(child_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_topic_subject_grade ON topic(subject, grade);
		`,
	},
}

// LatestSchemaVersion returns the highest migration version.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion reports the highest applied migration version, 0 when the
// schema_version table is missing or empty.
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&current); err != nil {
		return 0, err
	}
	if !current.Valid {
		return 0, nil
	}
	return int(current.Int64), nil
}

// MigrateDB brings the database schema up to the latest version.
// PRE: db is a valid database connection
// POST: schema_version table exists and records the applied version
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	applied := 0
	if current.Valid {
		applied = int(current.Int64)
	}

	for _, m := range migrations {
		if m.version <= applied {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
		slog.Info("db_migrated", "version", m.version, "path", dbPath)
	}

	return nil
}
