package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// DB is a SQLite-backed document store.
type DB struct {
	conn   *sql.DB
	path   string
	driver string
	mu     sync.RWMutex
}

// Open opens an SQLite database at the given path using the pure-Go driver.
func Open(path string) (*DB, error) {
	return OpenWithDriver("sqlite", path)
}

// OpenWithDriver opens an SQLite database with a registered driver name,
// "sqlite" (modernc.org/sqlite) or "sqlite3" (github.com/mattn/go-sqlite3).
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func OpenWithDriver(driver, path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &DB{
		conn:   conn,
		path:   path,
		driver: driver,
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Driver returns the database/sql driver name in use.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Documents},
		{2, migrationV2UpdatedIndex},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Documents = `
CREATE TABLE IF NOT EXISTS documents (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

const migrationV2UpdatedIndex = `
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(collection, updated_at);
`

// Create stores a new record.
func (db *DB) Create(ctx context.Context, collection string, rec Record) (string, error) {
	id, data, err := encode(collection, rec)
	if err != nil {
		return "", err
	}

	now := formatTime(time.Now())

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	row := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err := row.Scan(&exists); err != nil {
		return "", fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	if exists > 0 {
		return "", fmt.Errorf("create %s/%s: %w", collection, id, ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, collection, id, string(data), now, now)
	if err != nil {
		return "", fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit %s/%s: %w", collection, id, err)
	}
	return id, nil
}

// Update replaces the stored record.
func (db *DB) Update(ctx context.Context, collection, id string, rec Record) (bool, error) {
	recID, data, err := encode(collection, rec)
	if err != nil {
		return false, err
	}
	if recID != id {
		return false, &ValidationError{Collection: collection, Reason: fmt.Sprintf("id %q does not match record id %q", id, recID)}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, `
		UPDATE documents SET data = ?, updated_at = ?
		WHERE collection = ? AND id = ?
	`, string(data), formatTime(time.Now()), collection, id)
	if err != nil {
		return false, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete removes a record.
func (db *DB) Delete(ctx context.Context, collection, id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

// Load retrieves a raw document.
func (db *DB) Load(ctx context.Context, collection, id string) (*Document, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRowContext(ctx, `
		SELECT data, created_at, updated_at FROM documents
		WHERE collection = ? AND id = ?
	`, collection, id)

	doc := Document{Collection: collection, ID: id}
	var data, createdAt, updatedAt string
	err := row.Scan(&data, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", collection, id, err)
	}

	doc.Data = []byte(data)
	doc.CreatedAt, _ = parseTime(createdAt)
	doc.UpdatedAt, _ = parseTime(updatedAt)
	return &doc, nil
}

// Scan iterates a collection in insertion order.
func (db *DB) Scan(ctx context.Context, collection string, fn func(Document) error) error {
	docs, err := db.loadAll(ctx, collection)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// loadAll reads the collection fully so fn runs without holding the lock.
func (db *DB) loadAll(ctx context.Context, collection string) ([]Document, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, data, created_at, updated_at FROM documents
		WHERE collection = ? ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc := Document{Collection: collection}
		var data, createdAt, updatedAt string
		if err := rows.Scan(&doc.ID, &data, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		doc.Data = []byte(data)
		doc.CreatedAt, _ = parseTime(createdAt)
		doc.UpdatedAt, _ = parseTime(updatedAt)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	return docs, nil
}

// Count returns the number of documents in a collection.
func (db *DB) Count(ctx context.Context, collection string) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var n int
	row := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE collection = ?", collection)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
