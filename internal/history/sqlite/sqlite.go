// Package sqlite implements a persistent SQLite-backed history store.
// It uses modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/intakehq/intake/internal/history"
	"github.com/intakehq/intake/internal/provider"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// defaultBusyTimeout is the milliseconds to wait on a busy lock.
const defaultBusyTimeout = 5000

// Store implements history.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ history.Store = (*Store)(nil)

// Open opens a SQLite database at the given path and returns a Store
// backed by it. The caller is responsible for calling Close when done.
//
// The database is created with WAL mode, a 5 s busy timeout, and a single
// connection (SQLite serialises writes). The schema is migrated
// automatically.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Append adds a turn to the user's history. The sequence number is
// assigned server-side from the current maximum, and the timestamp is
// server-assigned, matching the ordering contract.
func (s *Store) Append(uid string, msg provider.Message) error {
	// history.Store does not carry context; use TODO as placeholder.
	_, err := s.db.ExecContext(context.TODO(), `
		INSERT INTO turns (uid, seq, role, content)
		VALUES (?, COALESCE((SELECT MAX(seq) FROM turns WHERE uid = ?), 0) + 1, ?, ?)`,
		uid, uid, string(msg.Role), msg.Content,
	)
	if err != nil {
		return fmt.Errorf("sqlite: append turn: %w", err)
	}
	return nil
}

// Recent returns the n most recent turns for a user, oldest-first.
func (s *Store) Recent(uid string, n int) ([]provider.Message, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(context.TODO(), `
		SELECT role, content FROM (
			SELECT seq, role, content
			FROM turns
			WHERE uid = ?
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC`,
		uid, n,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get recent: %w", err)
	}
	return scanMessages(rows)
}

// All returns the user's turns oldest-first, capped at history.MaxFetch.
func (s *Store) All(uid string) ([]provider.Message, error) {
	rows, err := s.db.QueryContext(context.TODO(), `
		SELECT role, content
		FROM turns
		WHERE uid = ?
		ORDER BY seq ASC
		LIMIT ?`,
		uid, history.MaxFetch,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get all: %w", err)
	}
	return scanMessages(rows)
}

// Len returns the number of turns stored for a user.
func (s *Store) Len(uid string) (int, error) {
	var count int
	err := s.db.QueryRowContext(context.TODO(),
		"SELECT COUNT(*) FROM turns WHERE uid = ?", uid,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count turns: %w", err)
	}
	return count, nil
}

// Purge removes all history for a user.
func (s *Store) Purge(uid string) error {
	if _, err := s.db.ExecContext(context.TODO(),
		"DELETE FROM turns WHERE uid = ?", uid,
	); err != nil {
		return fmt.Errorf("sqlite: purge turns: %w", err)
	}
	return nil
}

// PurgeIdle removes all history for users whose most recent turn is older
// than the cutoff. Returns the number of users purged.
func (s *Store) PurgeIdle(cutoff time.Time) (int, error) {
	ctx := context.TODO()

	rows, err := s.db.QueryContext(ctx, `
		SELECT uid FROM turns
		GROUP BY uid
		HAVING MAX(created_at) < ?`,
		cutoff.UTC().Format("2006-01-02T15:04:05.000Z"),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: find idle users: %w", err)
	}

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("sqlite: scan idle user: %w", err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fmt.Errorf("sqlite: idle user rows: %w", err)
	}
	_ = rows.Close()

	for _, uid := range uids {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM turns WHERE uid = ?", uid); err != nil {
			return 0, fmt.Errorf("sqlite: purge idle user %s: %w", uid, err)
		}
	}

	return len(uids), nil
}

func scanMessages(rows *sql.Rows) ([]provider.Message, error) {
	defer func() { _ = rows.Close() }()

	var msgs []provider.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("sqlite: scan turn: %w", err)
		}
		msgs = append(msgs, provider.Message{
			Role:    provider.MessageRole(role),
			Content: content,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: turn rows: %w", err)
	}
	return msgs, nil
}
