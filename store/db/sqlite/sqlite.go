package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/relaymind/recall/internal/profile"
	"github.com/relaymind/recall/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database at profile.DSN and ensures the durable
// layout exists.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// Ensure foreign key support and WAL for concurrent readers. The busy
	// timeout covers writers contending on the single write lock.
	dsn := profile.DSN + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", dsn)
	}

	driver := &DB{db: sqliteDB, profile: profile}
	if err := driver.migrate(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to migrate db")
	}
	return driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// migrate creates the text, vector, and setting tables if absent. Texts and
// vectors live in separate tables keyed by the same id so similarity scans
// can stream vectors without dragging texts through the page cache.
func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_text (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
		)`,
		`CREATE TABLE IF NOT EXISTS memory_vector (
			id TEXT PRIMARY KEY,
			embedding BLOB NOT NULL,
			FOREIGN KEY (id) REFERENCES memory_text (id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS system_setting (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create table")
		}
	}
	return nil
}

// GetSystemSetting returns the value for key, or "" if unset.
func (d *DB) GetSystemSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM system_setting WHERE name = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get system setting")
	}
	return value, nil
}

// UpsertSystemSetting writes a setting key/value pair.
func (d *DB) UpsertSystemSetting(ctx context.Context, key, value string) error {
	stmt := `
		INSERT INTO system_setting (name, value)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := d.db.ExecContext(ctx, stmt, key, value); err != nil {
		return errors.Wrap(err, "failed to upsert system setting")
	}
	return nil
}
