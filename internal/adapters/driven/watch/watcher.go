package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Ensure Watcher implements the FileWatcher interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// eventBuffer is the capacity of the channel returned by Watch.
const eventBuffer = 100

// Watcher reports matching files under a directory tree.
type Watcher struct {
	patterns []string
}

// NewWatcher creates a watcher for the given patterns.
// No patterns means domain.DefaultUploadPattern.
func NewWatcher(patterns []string) (*Watcher, error) {
	if len(patterns) == 0 {
		patterns = []string{domain.DefaultUploadPattern}
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, fmt.Errorf("%w: bad pattern %q", domain.ErrInvalidInput, p)
		}
	}
	return &Watcher{patterns: patterns}, nil
}

// Matches reports whether rel, relative to the watched directory, matches a pattern.
func (w *Watcher) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(p), rel); ok {
			return true
		}
	}
	return false
}

// Watch starts monitoring dir and every directory below it.
// The channel is closed when ctx is cancelled or the watch fails.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(fw, root, nil); err != nil {
		_ = fw.Close()
		return nil, err
	}

	events := make(chan string, eventBuffer)
	go w.loop(ctx, fw, root, events)
	return events, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, root string, events chan<- string) {
	defer close(events)
	defer fw.Close()

	emit := func(path string) bool {
		rel, err := filepath.Rel(root, path)
		if err != nil || !w.Matches(rel) {
			return true
		}
		select {
		case events <- path:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				// Files may land in a new directory before it is watched.
				var found []string
				if err := addTree(fw, event.Name, &found); err != nil {
					logger.Warn("Watch %s: %v", event.Name, err)
				}
				for _, f := range found {
					if !emit(f) {
						return
					}
				}
				continue
			}
			if info.Mode().IsRegular() && !emit(event.Name) {
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// addTree watches dir and its subdirectories. Regular files found on the
// way are appended to found when it is not nil.
func addTree(fw *fsnotify.Watcher, dir string, found *[]string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if found != nil && d.Type().IsRegular() {
			*found = append(*found, path)
		}
		return nil
	})
}
