package driven

import "context"

// FileWatcher reports files created or written under a directory.
// The channel is closed when ctx is cancelled.
type FileWatcher interface {
	Watch(ctx context.Context, dir string) (<-chan string, error)
}
