package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/pricewatch"
)

// Compile-time interface verification.
var _ pricewatch.StateStore = (*StateStore)(nil)

// StateStore implements pricewatch.StateStore using SQLite.
type StateStore struct {
	db *DB
}

// NewStateStore creates a new StateStore.
func NewStateStore(db *DB) *StateStore {
	return &StateStore{db: db}
}

// Get returns the value stored under key.
func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", pricewatch.Errorf(pricewatch.ENOTFOUND, "no value for %q", key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *StateStore) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return pricewatch.Errorf(pricewatch.EINVALID, "state key required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, formatTime(time.Now()))
	return err
}
