package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rlyeh-labs/cthulhu-chat/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using a single key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS session_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) getValue(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM session_state WHERE key = ?`, key)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) setValue(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO session_state (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().Unix())
	if shared.IsSQLiteConflictError(err) {
		// One retry on lock contention; the write is an idempotent overwrite.
		slog.Warn("retrying session state write after lock conflict", "key", key)
		_, err = s.db.ExecContext(ctx, query, key, value, time.Now().Unix())
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) deleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// LoadIdentity returns the stored user identifier, or "" if none.
func (s *SQLiteStore) LoadIdentity(ctx context.Context) (string, error) {
	return s.getValue(ctx, KeyUserID)
}

// SaveIdentity overwrites the stored user identifier.
func (s *SQLiteStore) SaveIdentity(ctx context.Context, id string) error {
	return s.setValue(ctx, KeyUserID, id)
}

// LoadScore returns the stored score, or 0 if none or unparseable.
func (s *SQLiteStore) LoadScore(ctx context.Context) (int, error) {
	raw, err := s.getValue(ctx, KeyUserScore)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		// A corrupt stored score must not take the session down.
		slog.Warn("stored score is not an integer, starting from zero", "value", raw)
		return 0, nil
	}
	return value, nil
}

// SaveScore overwrites the stored score.
func (s *SQLiteStore) SaveScore(ctx context.Context, value int) error {
	return s.setValue(ctx, KeyUserScore, strconv.Itoa(value))
}

// LoadConversationID returns the stored conversation id, or "" if none.
func (s *SQLiteStore) LoadConversationID(ctx context.Context) (string, error) {
	return s.getValue(ctx, KeyConversationID)
}

// SaveConversationID overwrites the stored conversation id.
func (s *SQLiteStore) SaveConversationID(ctx context.Context, id string) error {
	return s.setValue(ctx, KeyConversationID, id)
}

// ClearConversationID removes the stored conversation id.
func (s *SQLiteStore) ClearConversationID(ctx context.Context) error {
	return s.deleteValue(ctx, KeyConversationID)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
