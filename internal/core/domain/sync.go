package domain

import "time"

// Sync defaults.
const (
	DefaultSyncDebounce = 2 * time.Second

	// SyncHistoryLimit is the number of batch results kept in memory.
	SyncHistoryLimit = 100
)

// SyncConfig controls how watched files are batched into uploads.
type SyncConfig struct {
	// Debounce is how long the watcher must stay quiet before a batch is sent.
	Debounce time.Duration

	// RefreshInterval refreshes the document list periodically. Zero disables it.
	RefreshInterval time.Duration
}

// DefaultSyncConfig returns the configuration used by "docs watch".
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{Debounce: DefaultSyncDebounce}
}

// SyncResult records one upload batch sent by the scheduler.
type SyncResult struct {
	Files     []string
	Result    *UploadResult
	StartedAt time.Time
	EndedAt   time.Time
	Error     string
}

// Succeeded returns true if the batch was accepted by the backend.
func (r SyncResult) Succeeded() bool {
	return r.Error == "" && r.Result != nil && r.Result.IsSuccessful
}

