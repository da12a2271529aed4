package quicktask

import "time"

const (
	DefaultStorageKey    = "quick-tasks"
	DefaultMaxItems      = 100
	DefaultKeepCompleted = 20
	DefaultSaveDebounce  = 300 * time.Millisecond
)

// Options configures a Store.
type Options struct {
	StorageKey string
	// MaxItems bounds the collection on load and on every write.
	MaxItems int
	// KeepCompleted is how many completed tasks survive a capacity trim.
	KeepCompleted int
	SaveDebounce  time.Duration
	Now           func() time.Time
	Activity      ActivityRecorder
}

func (o Options) withDefaults() Options {
	if o.StorageKey == "" {
		o.StorageKey = DefaultStorageKey
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.KeepCompleted <= 0 {
		o.KeepCompleted = DefaultKeepCompleted
	}
	if o.SaveDebounce < 0 {
		o.SaveDebounce = 0
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}
