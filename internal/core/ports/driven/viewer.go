package driven

import "context"

// DocumentViewer displays a document held by the backend.
// The viewer composes the final location from the name and base URL.
type DocumentViewer interface {
	Open(ctx context.Context, name, baseURL string) error
}
