package repository

import (
	"context"

	"github.com/ganot/taskdesk/internal/domain/activity"
)

// KeyValueStore persists whole documents under string keys, the way browser
// local storage does.
type KeyValueStore interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set returns ErrQuotaExceeded when the value does not fit.
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
