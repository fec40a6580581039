package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"exiled-search/pkg/logger"
)

type DB struct {
	db  *sql.DB
	log *logger.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS searches (
    id TEXT PRIMARY KEY,
    item_name TEXT NOT NULL,
    item_class TEXT NOT NULL,
    scale_percent INTEGER NOT NULL,
    delay_profile TEXT NOT NULL,
    success INTEGER NOT NULL,
    error TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS searches_created_at ON searches(created_at);
`

// DefaultPath is the database location under the user config directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "exiled-search", "exiled-search.db"), nil
}

// Open opens (and creates if needed) the database at path. An empty path
// uses DefaultPath.
func Open(path string, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Nop()
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets the daemon and the CLI share the file
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug("Database opened", "path", path)
	return &DB{db: db, log: log}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Get returns a preference. The bool is false when it was never set.
func (d *DB) Get(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (d *DB) Set(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (d *DB) Delete(key string) error {
	if _, err := d.db.Exec("DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// GetInt returns def when the key is unset or not a number.
func (d *DB) GetInt(key string, def int) (int, error) {
	v, ok, err := d.Get(key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		d.log.Warn("Ignoring non-numeric preference", "key", key, "value", v)
		return def, nil
	}
	return n, nil
}

func (d *DB) SetInt(key string, v int) error {
	return d.Set(key, strconv.Itoa(v))
}

func (d *DB) GetBool(key string, def bool) (bool, error) {
	v, ok, err := d.Get(key)
	if err != nil || !ok {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		d.log.Warn("Ignoring non-boolean preference", "key", key, "value", v)
		return def, nil
	}
	return b, nil
}

func (d *DB) SetBool(key string, v bool) error {
	return d.Set(key, strconv.FormatBool(v))
}

// Cleanup removes search history older than olderThan.
func (d *DB) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := d.db.Exec("DELETE FROM searches WHERE created_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old searches: %w", err)
	}
	return nil
}

// SearchRecord is one pipeline run.
type SearchRecord struct {
	ID           string    `json:"id"`
	ItemName     string    `json:"item_name"`
	ItemClass    string    `json:"item_class"`
	ScalePercent int       `json:"scale_percent"`
	DelayProfile string    `json:"delay_profile"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AddSearch stores rec, filling in ID and CreatedAt when unset.
func (d *DB) AddSearch(rec SearchRecord) (SearchRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := d.db.Exec(`
		INSERT INTO searches (
			id, item_name, item_class, scale_percent, delay_profile,
			success, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ItemName, rec.ItemClass, rec.ScalePercent, rec.DelayProfile,
		rec.Success, rec.Error, rec.CreatedAt)
	if err != nil {
		return rec, fmt.Errorf("failed to insert search: %w", err)
	}

	d.log.Debug("Search recorded", "id", rec.ID, "success", rec.Success)
	return rec, nil
}

// RecentSearches returns up to limit records, newest first.
func (d *DB) RecentSearches(limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
		SELECT id, item_name, item_class, scale_percent, delay_profile,
		       success, error, created_at
		FROM searches
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var out []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		if err := rows.Scan(
			&rec.ID, &rec.ItemName, &rec.ItemClass, &rec.ScalePercent, &rec.DelayProfile,
			&rec.Success, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read searches: %w", err)
	}
	return out, nil
}
