package driving

import (
	"context"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// DocumentCoordinator owns the set of documents known to the backend.
//
// A coordinator is tied to the surface that created it. Close cancels any
// in-flight list or upload and discards their results.
type DocumentCoordinator interface {
	// Refresh replaces the known set with the backend's list.
	// When the list cannot be fetched the set is left empty and
	// domain.ErrDocumentsUnavailable is returned.
	Refresh(ctx context.Context) error

	// Documents returns a copy of the known set, ordered by name.
	Documents() []domain.DocumentDescriptor

	// Filter returns known documents whose name contains query, ignoring case.
	Filter(query string) []domain.DocumentDescriptor

	// SubmitUpload uploads files, notifies the outcome and refreshes.
	// An empty selection is a no-op and returns nil, nil.
	SubmitUpload(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error)

	// OpenDocument shows a known document in the viewer.
	OpenDocument(ctx context.Context, name string) error

	// OpenCitation shows a cited document in the viewer.
	OpenCitation(ctx context.Context, citation domain.CitationDetails) error

	// Close tears the coordinator down.
	Close()
}
