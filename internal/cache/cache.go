// Package cache keeps the last committed task collection per user in SQLite
// so the list can be shown offline. It is cleared on every logout.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskflow/internal/task"
)

const timeLayout = time.RFC3339Nano

// ErrNotFound is returned by Load when no snapshot exists for the user.
var ErrNotFound = errors.New("cache: no snapshot")

// Snapshot is a cached collection.
type Snapshot struct {
	UserID      string
	Tasks       []task.Task
	RefreshedAt time.Time
}

// SQLiteCache stores snapshots in a SQLite database.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an open, migrated database.
func New(db *sql.DB) (*SQLiteCache, error) {
	if db == nil {
		return nil, errors.New("cache: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteCache{db: db, now: time.Now}, nil
}

// Open opens the database at path and applies migrations.
func Open(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps the foreign_keys pragma in effect.
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	c, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Store replaces the user's snapshot with tasks.
func (c *SQLiteCache) Store(ctx context.Context, userID string, tasks []task.Task) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (user_id, refreshed_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET refreshed_at = excluded.refreshed_at`,
		userID, c.now().UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (user_id, position, id, title, description, priority, due_date, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		var due sql.NullString
		if t.HasDue() {
			due = sql.NullString{String: t.DueString(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, userID, i, t.ID, t.Title, t.Description, string(t.Priority), due, boolToInt(t.Completed)); err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Load returns the user's snapshot in its stored order.
func (c *SQLiteCache) Load(ctx context.Context, userID string) (Snapshot, error) {
	var refreshed string
	err := c.db.QueryRowContext(ctx, `SELECT refreshed_at FROM snapshots WHERE user_id = ?`, userID).Scan(&refreshed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	at, err := time.Parse(timeLayout, refreshed)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse refreshed_at: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, title, description, priority, due_date, completed
		FROM tasks WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	out := make([]task.Task, 0)
	for rows.Next() {
		var (
			t         task.Task
			priority  string
			due       sql.NullString
			completed int
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &priority, &due, &completed); err != nil {
			return Snapshot{}, err
		}
		t.Priority = task.Priority(priority)
		t.Completed = completed != 0
		if due.Valid {
			d, err := time.Parse(task.DateLayout, due.String)
			if err != nil {
				return Snapshot{}, fmt.Errorf("parse due_date: %w", err)
			}
			t.Due = &d
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{UserID: userID, Tasks: out, RefreshedAt: at}, nil
}

// Clear removes every snapshot.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"tasks", "snapshots"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
