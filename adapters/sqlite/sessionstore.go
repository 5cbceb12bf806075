package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/artpar/wxgate/ports"
)

// SessionStore implements ports.SessionStore using SQLite.
type SessionStore struct {
	db    *DB
	clock ports.Clock
}

// NewSessionStore creates a new SQLite session store.
func NewSessionStore(db *DB, clock ports.Clock) *SessionStore {
	return &SessionStore{db: db, clock: clock}
}

// Get retrieves a value. Expired rows are dropped lazily.
func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT value, expires_at FROM sessions WHERE key = ?
	`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt > 0 && s.clock.Now().Unix() >= expiresAt {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key)
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores a value with an optional TTL.
func (s *SessionStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.clock.Now().Add(ttl).Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)
	return err
}

// Delete removes a key.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key)
	return err
}

// Ensure interface compliance.
var _ ports.SessionStore = (*SessionStore)(nil)
