package project

import (
	"context"

	"github.com/ganot/taskdesk/internal/domain/activity"
)

// Storage persists the projects document.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// ActivityRecorder records store mutations.
type ActivityRecorder interface {
	Record(ctx context.Context, collection, entityID string, typ activity.ActivityType, summary string)
}
