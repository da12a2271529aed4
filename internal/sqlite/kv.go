package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ganot/taskdesk/internal/repository"
)

// KVStore implements repository.KeyValueStore on the kv table. A positive
// quota caps the total bytes of keys plus values, mirroring browser storage.
type KVStore struct {
	db    *DB
	quota int64
}

// NewKVStore creates a new KVStore. quotaBytes <= 0 disables the quota.
func NewKVStore(db *DB, quotaBytes int64) *KVStore {
	return &KVStore{db: db, quota: quotaBytes}
}

// Get returns the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", mapError("get key", err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer tx.Rollback()

	if s.quota > 0 {
		var used int64
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0)
			FROM kv
			WHERE key != ?
		`, key).Scan(&used)
		if err != nil {
			return mapError("measure usage", err)
		}
		if used+int64(len(key))+int64(len(value)) > s.quota {
			return fmt.Errorf("set %q (%d bytes, %d in use, quota %d): %w",
				key, len(value), used, s.quota, repository.ErrQuotaExceeded)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	if err != nil {
		return mapError("set key", err)
	}

	if err := tx.Commit(); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return mapError("remove key", err)
	}
	return nil
}

// Keys lists every stored key in lexical order
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, mapError("list keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key rows: %w", err)
	}
	return keys, nil
}

// Usage reports the bytes counted against the quota
func (s *KVStore) Usage(ctx context.Context) (int64, error) {
	var used int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0) FROM kv
	`).Scan(&used)
	if err != nil {
		return 0, mapError("measure usage", err)
	}
	return used, nil
}
