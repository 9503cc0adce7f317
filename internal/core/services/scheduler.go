package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Ensure UploadScheduler implements the interface.
var _ driving.UploadScheduler = (*UploadScheduler)(nil)

// UploadScheduler batches files reported by a FileWatcher into uploads.
// Paths are collected until the watcher has been quiet for the debounce
// period, then sent through the DocumentCoordinator as one upload.
type UploadScheduler struct {
	config  domain.SyncConfig
	watcher driven.FileWatcher
	files   driven.FileSource
	docs    driving.DocumentCoordinator
	now     func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
	history []domain.SyncResult
}

// NewUploadScheduler creates a scheduler with configuration.
func NewUploadScheduler(
	config domain.SyncConfig,
	watcher driven.FileWatcher,
	files driven.FileSource,
	docs driving.DocumentCoordinator,
) *UploadScheduler {
	if config.Debounce <= 0 {
		config.Debounce = domain.DefaultSyncDebounce
	}
	return &UploadScheduler{
		config:  config,
		watcher: watcher,
		files:   files,
		docs:    docs,
		now:     time.Now,
	}
}

// Start watches dir and uploads new files. It blocks until Stop is called,
// ctx ends or the watcher closes its channel.
func (s *UploadScheduler) Start(ctx context.Context, dir string) error {
	if s.watcher == nil || s.files == nil || s.docs == nil {
		return fmt.Errorf("upload scheduler: %w", domain.ErrNotConfigured)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		// A newer run may have started after Stop released this one.
		if s.stopCh == stopCh {
			s.running = false
		}
		s.mu.Unlock()
		close(done)
	}()

	events, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Section("Watch")
	logger.Debug("Watching %s, debounce %s", dir, s.config.Debounce)

	return s.run(ctx, events, stopCh)
}

// Stop ends the loop and waits for the batch in progress to finish.
func (s *UploadScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

// History returns the most recent batch results, oldest first.
func (s *UploadScheduler) History() []domain.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SyncResult, len(s.history))
	copy(out, s.history)
	return out
}

// run is the main loop.
func (s *UploadScheduler) run(ctx context.Context, events <-chan string, stopCh <-chan struct{}) error {
	pending := make(map[string]struct{})

	debounce := time.NewTimer(s.config.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	var refresh <-chan time.Time
	if s.config.RefreshInterval > 0 {
		ticker := time.NewTicker(s.config.RefreshInterval)
		defer ticker.Stop()
		refresh = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case path, ok := <-events:
			if !ok {
				s.flush(ctx, pending)
				return nil
			}
			pending[path] = struct{}{}
			debounce.Reset(s.config.Debounce)
		case <-debounce.C:
			s.flush(ctx, pending)
			clear(pending)
		case <-refresh:
			if err := s.docs.Refresh(ctx); err != nil {
				logger.Warn("Scheduled refresh: %v", err)
			}
		}
	}
}

// flush uploads every pending path as one batch.
func (s *UploadScheduler) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}

	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	result := domain.SyncResult{Files: paths, StartedAt: s.now()}

	files := make([]domain.UploadFile, 0, len(paths))
	closers := make([]io.Closer, 0, len(paths))
	for _, p := range paths {
		f, closer, err := s.files.Open(p)
		if err != nil {
			// The file may be gone again by the time the batch is sent.
			logger.Warn("Skipping %s: %v", p, err)
			continue
		}
		files = append(files, f)
		closers = append(closers, closer)
	}

	if len(files) == 0 {
		result.Error = "no readable files in batch"
	} else {
		logger.Debug("Uploading batch of %d files", len(files))
		upload, err := s.docs.SubmitUpload(ctx, files)
		result.Result = upload
		switch {
		case err != nil:
			result.Error = err.Error()
		case upload != nil && !upload.IsSuccessful:
			result.Error = upload.Error
		}
	}

	for _, c := range closers {
		_ = c.Close()
	}
	result.EndedAt = s.now()
	s.record(result)
}

// record appends to history, keeping the last SyncHistoryLimit results.
func (s *UploadScheduler) record(result domain.SyncResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, result)
	if over := len(s.history) - domain.SyncHistoryLimit; over > 0 {
		s.history = append([]domain.SyncResult(nil), s.history[over:]...)
	}
}
