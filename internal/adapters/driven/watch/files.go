package watch

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
)

// Ensure Files implements the FileSource interface.
var _ driven.FileSource = Files{}

// Files opens local files for upload.
type Files struct{}

// Open returns an upload backed by the file at path.
// The returned Closer closes the file.
func (Files) Open(path string) (domain.UploadFile, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.UploadFile{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return domain.UploadFile{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return domain.UploadFile{}, nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, path)
	}

	return domain.UploadFile{
		Name:        filepath.Base(path),
		ContentType: ContentType(path),
		Size:        info.Size(),
		Content:     f,
	}, f, nil
}

// ContentType guesses the MIME type from the file extension.
func ContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Expand resolves paths and doublestar globs to a sorted list of regular files.
// A literal path or pattern that matches nothing is an error.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			if errors.Is(err, doublestar.ErrBadPattern) {
				return nil, fmt.Errorf("%w: bad pattern %q", domain.ErrInvalidInput, arg)
			}
			return nil, fmt.Errorf("expand %s: %w", arg, err)
		}

		n := 0
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			n++
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: no files match %q", domain.ErrInvalidInput, arg)
		}
	}

	sort.Strings(out)
	return out, nil
}
