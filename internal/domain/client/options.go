package client

import (
	"time"

	"golang.org/x/text/language"
)

const (
	DefaultStorageKey = "task_management_clients"
	// MaxSuggestions caps Suggest results.
	MaxSuggestions = 10
)

// Options configures a Store.
type Options struct {
	StorageKey string
	// SaveDebounce of zero writes on every change.
	SaveDebounce time.Duration
	// Language selects the collation used to order suggestions.
	Language language.Tag
	Now      func() time.Time
	Activity ActivityRecorder
}

func (o Options) withDefaults() Options {
	if o.StorageKey == "" {
		o.StorageKey = DefaultStorageKey
	}
	if o.SaveDebounce < 0 {
		o.SaveDebounce = 0
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}
