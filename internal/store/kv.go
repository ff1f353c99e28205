package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Keys under which each component persists its state.
const (
	KeyTasks            = "biome-tasks"
	KeyProjects         = "biome-projects"
	KeyPomodoroSettings = "biome-pomodoro-settings"
	KeyTimerState       = "biome-timer-state"
	KeyPomodoroCount    = "biome-pomodoro-count"
	KeyWidgets          = "biome-widgets"
	KeyNotes            = "biome-notes"
	KeyWeekStart        = "biome-week-start"
	KeyWeeklyScores     = "biome-weekly-scores"
)

// ErrNotFound is returned by Value when the key has never been set.
var ErrNotFound = errors.New("key not found")

// KV is a synchronous string key-value store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

var _ KV = (*Store)(nil)

func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Value is Get with a missing key reported as ErrNotFound.
func (s *Store) Value(key string) (string, error) {
	v, ok, err := s.Get(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Keys returns every stored key in lexical order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
