package driving

import (
	"context"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// UploadScheduler uploads files as they appear in a watched directory.
type UploadScheduler interface {
	// Start watches dir and blocks until Stop is called or ctx ends.
	Start(ctx context.Context, dir string) error

	// Stop ends the loop and waits for the batch in progress.
	Stop() error

	// History returns the most recent batch results, oldest first.
	History() []domain.SyncResult
}
