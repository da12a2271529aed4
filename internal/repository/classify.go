package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// CleanupPrefixes name the disposable keys removed when the quota is hit.
var CleanupPrefixes = []string{"temp_", "cache_"}

// ClassifyStorageError logs a storage failure and, for quota errors, makes a
// best-effort pass removing disposable keys. It never returns an error.
func ClassifyStorageError(ctx context.Context, logger *slog.Logger, kv KeyValueStore, op string, err error) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Error("storage operation failed", "op", op, "error", err)

	switch {
	case errors.Is(err, ErrQuotaExceeded):
		logger.Warn("storage quota exceeded, cleaning up disposable keys", "op", op)
		removed := cleanupDisposableKeys(ctx, logger, kv)
		logger.Info("storage cleanup finished", "op", op, "removed", removed)
	case errors.Is(err, ErrAccessDenied):
		logger.Warn("storage access denied", "op", op)
	default:
		logger.Warn("unknown storage error", "op", op)
	}
}

func cleanupDisposableKeys(ctx context.Context, logger *slog.Logger, kv KeyValueStore) int {
	if kv == nil {
		return 0
	}
	keys, err := kv.Keys(ctx)
	if err != nil {
		logger.Error("failed to list keys for cleanup", "error", err)
		return 0
	}

	removed := 0
	for _, key := range keys {
		if !isDisposable(key) {
			continue
		}
		if err := kv.Remove(ctx, key); err != nil {
			logger.Error("failed to remove disposable key", "key", key, "error", err)
			continue
		}
		removed++
	}
	return removed
}

func isDisposable(key string) bool {
	for _, prefix := range CleanupPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
