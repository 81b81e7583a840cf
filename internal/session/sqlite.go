package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/spindle/internal/model"
)

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "spindle.db"

// SQLiteStore persists session records in a SQLite database so sessions
// created in one invocation can be reused by later ones.
//
// Design decision: We use one database file for all sessions rather
// than a file per session. Listing stays a single query and backup is
// one file copy.
type SQLiteStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SQLiteStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a session database under dbDir. With
// CreateIfNotExists unset, a missing database is an error instead of an
// empty store, which callers use to distinguish "no sessions yet" from
// "wrong directory".
func Open(dbDir string, opts Options) (*SQLiteStore, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("session database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// SQLite supports only one writer; a single connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// createTables creates the schema if it doesn't exist.
func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		initial_url TEXT,
		browser_type TEXT,
		created_at DATETIME NOT NULL,
		last_used DATETIME NOT NULL,
		last_error TEXT,
		metadata TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_used ON sessions(last_used);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Put inserts or replaces a record by its ID.
func (s *SQLiteStore) Put(ctx context.Context, record *model.SessionRecord) error {
	if record.ID == "" {
		return ErrEmptyID
	}

	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize session metadata: %w", err)
	}

	query := `
	INSERT INTO sessions (id, initial_url, browser_type, created_at, last_used, last_error, metadata)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		initial_url = excluded.initial_url,
		browser_type = excluded.browser_type,
		created_at = excluded.created_at,
		last_used = excluded.last_used,
		last_error = excluded.last_error,
		metadata = excluded.metadata
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.InitialURL,
		record.BrowserType,
		formatTimestamp(record.CreatedAt),
		formatTimestamp(record.LastUsed),
		record.LastError,
		string(metadataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store session %s: %w", record.ID, err)
	}
	return nil
}

// Get returns the record with the given ID, or nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	query := `
	SELECT id, initial_url, browser_type, created_at, last_used, last_error, metadata
	FROM sessions
	WHERE id = ?
	`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return record, nil
}

// Touch updates the last-used time of the record.
func (s *SQLiteStore) Touch(ctx context.Context, id string, when time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET last_used = ? WHERE id = ?",
		formatTimestamp(when), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to touch session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count touched rows: %w", err)
	}
	return affected > 0, nil
}

// Remove deletes the record.
func (s *SQLiteStore) Remove(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to remove session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count removed rows: %w", err)
	}
	return affected > 0, nil
}

// List returns all records ordered by creation time, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*model.SessionRecord, error) {
	query := `
	SELECT id, initial_url, browser_type, created_at, last_used, last_error, metadata
	FROM sessions
	ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []*model.SessionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one session row.
func scanRecord(row rowScanner) (*model.SessionRecord, error) {
	var record model.SessionRecord
	var createdAt, lastUsed string
	var metadataJSON sql.NullString

	if err := row.Scan(
		&record.ID,
		&record.InitialURL,
		&record.BrowserType,
		&createdAt,
		&lastUsed,
		&record.LastError,
		&metadataJSON,
	); err != nil {
		return nil, err
	}

	record.CreatedAt = parseTimestamp(createdAt)
	record.LastUsed = parseTimestamp(lastUsed)

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse session metadata: %w", err)
		}
	}
	return &record, nil
}

// formatTimestamp stores times in UTC RFC3339 so they round-trip
// through SQLite's TEXT affinity unambiguously.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts each known format and returns zero time when
// none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
