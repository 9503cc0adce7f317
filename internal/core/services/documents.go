package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Ensure DocumentCoordinator implements the interface.
var _ driving.DocumentCoordinator = (*DocumentCoordinator)(nil)

// DocumentCoordinator owns the documents known to the backend for one surface.
type DocumentCoordinator struct {
	backend     driven.BackendClient
	notifier    driven.Notifier
	viewer      driven.DocumentViewer
	maxFileSize int64

	// ctx lives as long as the owning surface.
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	docs []domain.DocumentDescriptor
}

// NewDocumentCoordinator creates a coordinator bound to parent.
// Cancelling parent has the same effect as Close.
func NewDocumentCoordinator(
	parent context.Context,
	backend driven.BackendClient,
	notifier driven.Notifier,
	viewer driven.DocumentViewer,
	maxFileSize int64,
) *DocumentCoordinator {
	if maxFileSize <= 0 {
		maxFileSize = domain.DefaultMaxUploadFileSize
	}
	ctx, cancel := context.WithCancel(parent)
	return &DocumentCoordinator{
		backend:     backend,
		notifier:    notifier,
		viewer:      viewer,
		maxFileSize: maxFileSize,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// scope derives a context that ends with either ctx or the coordinator.
func (c *DocumentCoordinator) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Refresh replaces the known set with the backend's list.
//
// The previous set stays visible while the fetch is in flight. When the
// backend list is unavailable the set is emptied rather than kept; a fetch
// cut short by Close leaves it untouched.
func (c *DocumentCoordinator) Refresh(ctx context.Context) error {
	if c.backend == nil {
		return fmt.Errorf("document backend: %w", domain.ErrNotConfigured)
	}
	if c.ctx.Err() != nil {
		return domain.ErrCoordinatorClosed
	}

	ctx, cancel := c.scope(ctx)
	defer cancel()

	docs, ok := c.backend.ListDocuments(ctx)
	if c.ctx.Err() != nil {
		return domain.ErrCoordinatorClosed
	}
	if !ok {
		logger.Warn("Document list unavailable")
		c.mu.Lock()
		c.docs = nil
		c.mu.Unlock()
		return domain.ErrDocumentsUnavailable
	}

	byName := make(map[string]domain.DocumentDescriptor, len(docs))
	for _, d := range docs {
		byName[d.Name] = d
	}
	unique := make([]domain.DocumentDescriptor, 0, len(byName))
	for _, d := range byName {
		unique = append(unique, d)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Name < unique[j].Name })

	logger.Debug("Loaded %d documents", len(unique))

	c.mu.Lock()
	c.docs = unique
	c.mu.Unlock()
	return nil
}

// Documents returns a copy of the known set, ordered by name.
func (c *DocumentCoordinator) Documents() []domain.DocumentDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.DocumentDescriptor, len(c.docs))
	copy(out, c.docs)
	return out
}

// Filter returns known documents whose name contains query, ignoring case.
func (c *DocumentCoordinator) Filter(query string) []domain.DocumentDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.DocumentDescriptor, 0, len(c.docs))
	for _, d := range c.docs {
		if d.MatchesName(query) {
			out = append(out, d)
		}
	}
	return out
}

// SubmitUpload uploads files, notifies the outcome and refreshes.
func (c *DocumentCoordinator) SubmitUpload(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if c.backend == nil {
		return nil, fmt.Errorf("document backend: %w", domain.ErrNotConfigured)
	}
	if c.ctx.Err() != nil {
		return nil, domain.ErrCoordinatorClosed
	}

	ctx, cancel := c.scope(ctx)
	defer cancel()

	logger.Section("Upload")
	logger.Debug("Uploading %d files, ceiling %d bytes", len(files), c.maxFileSize)

	result := c.backend.UploadDocuments(ctx, files, c.maxFileSize)
	if c.ctx.Err() != nil {
		return nil, domain.ErrCoordinatorClosed
	}
	if result == nil {
		result = domain.NewUploadFailure(domain.UploadFailedMessage)
	}

	if result.IsSuccessful {
		c.notifySuccess(fmt.Sprintf("Uploaded %d documents.", len(result.UploadedFiles)))
	} else {
		logger.Warn("Upload failed: %s", result.Error)
		c.notifyError(result.Error)
	}

	if err := c.Refresh(ctx); err != nil {
		logger.Warn("Refresh after upload: %v", err)
		if errors.Is(err, domain.ErrCoordinatorClosed) {
			return nil, err
		}
	}
	return result, nil
}

// OpenDocument shows a known document in the viewer.
func (c *DocumentCoordinator) OpenDocument(ctx context.Context, name string) error {
	c.mu.RLock()
	var found *domain.DocumentDescriptor
	for i := range c.docs {
		if c.docs[i].Name == name {
			d := c.docs[i]
			found = &d
			break
		}
	}
	c.mu.RUnlock()

	if found == nil {
		return fmt.Errorf("%w: unknown document %q", domain.ErrInvalidInput, name)
	}
	return c.open(ctx, found.Name, found.URL)
}

// OpenCitation shows a cited document in the viewer.
func (c *DocumentCoordinator) OpenCitation(ctx context.Context, citation domain.CitationDetails) error {
	if citation.Name == "" {
		return fmt.Errorf("%w: citation has no document name", domain.ErrInvalidInput)
	}
	return c.open(ctx, citation.Name, citation.BaseURL)
}

func (c *DocumentCoordinator) open(ctx context.Context, name, baseURL string) error {
	if c.viewer == nil {
		return fmt.Errorf("document viewer: %w", domain.ErrNotConfigured)
	}
	return c.viewer.Open(ctx, name, baseURL)
}

// Close cancels in-flight work and discards its results.
func (c *DocumentCoordinator) Close() {
	c.cancel()
}

func (c *DocumentCoordinator) notifySuccess(msg string) {
	if c.notifier != nil {
		c.notifier.Success(msg)
	}
}

func (c *DocumentCoordinator) notifyError(msg string) {
	if c.notifier != nil {
		c.notifier.Error(msg)
	}
}
