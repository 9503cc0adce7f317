package driven

import (
	"io"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// FileSource opens local files for upload.
// The caller closes the returned Closer once the upload completes.
type FileSource interface {
	Open(path string) (domain.UploadFile, io.Closer, error)
}
