package project

import "time"

const (
	// DefaultStorageKey is the key the projects document is stored under.
	DefaultStorageKey = "task_management_data"
	// DefaultMaxDocumentBytes is the size above which a document is not kept whole.
	DefaultMaxDocumentBytes = 5 * 1024 * 1024
	// DefaultSaveDebounce is the quiet period before a write.
	DefaultSaveDebounce = 500 * time.Millisecond

	// sizeEvictionKeep is the share of most recently updated projects kept
	// when a document exceeds the size limit.
	sizeEvictionKeep = 0.7
	// quotaEvictionKeep is the share kept when the storage quota is exceeded.
	quotaEvictionKeep = 0.5
)

// Options configures a Store.
type Options struct {
	StorageKey       string
	MaxDocumentBytes int
	SaveDebounce     time.Duration
	Currencies       []string
	// Location is used for dates in exports. Defaults to time.Local.
	Location *time.Location
	// Now defaults to time.Now in UTC.
	Now      func() time.Time
	Activity ActivityRecorder
	// OnTruncate is called with the IDs dropped from the collection when a
	// write had to shrink it to fit storage.
	OnTruncate func(dropped []string)
}

func (o Options) withDefaults() Options {
	if o.StorageKey == "" {
		o.StorageKey = DefaultStorageKey
	}
	if o.MaxDocumentBytes <= 0 {
		o.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if o.SaveDebounce < 0 {
		o.SaveDebounce = 0
	}
	if len(o.Currencies) == 0 {
		o.Currencies = DefaultCurrencies
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}
