// store/db.go - SQLite session store
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/studioleflow/portal/internal/models"
	_ "modernc.org/sqlite"
)

// Compile-time check that DB implements Store
var _ Store = (*DB)(nil)

type DB struct {
	*sql.DB
}

// New creates/opens database and runs migrations
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS gate_bypass (
		scope TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		bypassed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS toasts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		scope TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		variant TEXT NOT NULL DEFAULT 'default' CHECK(variant IN ('default', 'destructive')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_toasts_scope ON toasts(scope);
	`
	_, err := db.Exec(schema)
	return err
}

// MarkBypassed records that the visitor passed the maintenance gate
func (db *DB) MarkBypassed(ctx context.Context, scope, username string) error {
	_, err := db.ExecContext(ctx, qGateUpsert, scope, username)
	return err
}

// IsBypassed reports whether the visitor passed the maintenance gate
func (db *DB) IsBypassed(ctx context.Context, scope string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, qGateExists, scope).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Toast scanner - DRY scan helper
type toastScanner struct {
	dest *models.Toast
}

func (s toastScanner) Scan(rows *sql.Rows) error {
	return rows.Scan(&s.dest.ID, &s.dest.Title, &s.dest.Description, &s.dest.Variant)
}

// PushToast queues a notification for the visitor's next page
func (db *DB) PushToast(ctx context.Context, scope string, t models.Toast) error {
	_, err := db.ExecContext(ctx, qToastInsert, t.ID, t.Title, t.Description, t.Variant, scope)
	return err
}

// PopToasts returns and removes queued notifications in one transaction
func (db *DB) PopToasts(ctx context.Context, scope string) ([]models.Toast, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, qToastsByScope, scope)
	if err != nil {
		return nil, err
	}
	toasts, err := scanAll(rows, func() *models.Toast { return &models.Toast{} },
		func(t *models.Toast) scanner { return toastScanner{t} })
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(toasts) == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx, qToastsDelete, scope); err != nil {
		return nil, err
	}
	return toasts, tx.Commit()
}

// ExpireToasts drops notifications nobody came back to read
func (db *DB) ExpireToasts(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := db.ExecContext(ctx, qToastsExpire, fmt.Sprintf("-%d seconds", int64(olderThan.Seconds())))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Generic scanner interface
type scanner interface {
	Scan(rows *sql.Rows) error
}

// Generic scanAll helper - DRY for scanning rows into slices
func scanAll[T any](rows *sql.Rows, newFn func() *T, scannerFn func(*T) scanner) ([]T, error) {
	var results []T
	for rows.Next() {
		item := newFn()
		if err := scannerFn(item).Scan(rows); err != nil {
			return nil, err
		}
		results = append(results, *item)
	}
	return results, rows.Err()
}
