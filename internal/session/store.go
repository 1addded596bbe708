// Package session persists the access token between runs.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store holds at most one session. Safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Session is the stored credential.
type Session struct {
	Username  string
	Token     string
	UpdatedAt time.Time
}

// Open opens (or creates) the store at dbPath. ":memory:" uses shared cache
// mode, so every Store opened with it in this process sees the same data
// until the last one is closed.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		username TEXT NOT NULL DEFAULT '',
		token TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Current returns the stored session. ok is false when signed out.
func (s *Store) Current(ctx context.Context) (sess Session, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRowContext(ctx,
		`SELECT username, token, updated_at FROM session WHERE id = 1`,
	).Scan(&sess.Username, &sess.Token, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("query session: %w", err)
	}
	return sess, true, nil
}

// Token returns the stored access token, or "" when signed out.
func (s *Store) Token(ctx context.Context) (string, error) {
	sess, _, err := s.Current(ctx)
	return sess.Token, err
}

// Save replaces the stored session.
func (s *Store) Save(ctx context.Context, username, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, username, token, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			token = excluded.token,
			updated_at = excluded.updated_at`,
		username, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SetToken stores token without a username.
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.Save(ctx, "", token)
}

// Revoke removes the stored session. Revoking when signed out is a no-op.
func (s *Store) Revoke(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
