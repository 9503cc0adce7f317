package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// receive waits for the first event matching want.
func receive(t *testing.T, events <-chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got, ok := <-events:
			require.True(t, ok, "channel closed before %s was seen", want)
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestWatcher_Matches(t *testing.T) {
	w, err := NewWatcher([]string{"**/*.pdf", "notes/*.txt"})
	require.NoError(t, err)

	tests := []struct {
		rel  string
		want bool
	}{
		{"a.pdf", true},
		{"deep/down/a.pdf", true},
		{"notes/a.txt", true},
		{"notes/sub/a.txt", false},
		{"a.txt", false},
		{"a.pdf.tmp", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Matches(tt.rel))
		})
	}
}

func TestNewWatcher_Defaults(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	assert.True(t, w.Matches("x/y.pdf"))

	_, err = NewWatcher([]string{"[unclosed"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{"**/*.pdf"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	root, err := filepath.Abs(dir)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "ignored.txt"), "x")
	writeFile(t, filepath.Join(root, "a.pdf"), "a")
	receive(t, events, filepath.Join(root, "a.pdf"))

	writeFile(t, filepath.Join(root, "new", "deeper", "b.pdf"), "b")
	receive(t, events, filepath.Join(root, "new", "deeper", "b.pdf"))

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_WatchErrors(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)

	_, err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "a.pdf")
	writeFile(t, file, "a")
	_, err = w.Watch(context.Background(), file)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFiles_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	writeFile(t, path, "%PDF-1.7")

	f, closer, err := Files{}.Open(path)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "report.pdf", f.Name)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, int64(8), f.Size)
	content, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(content))
}

func TestFiles_OpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Files{}.Open(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)

	_, _, err = Files{}.Open(dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.pdf"))
	assert.Equal(t, "application/octet-stream", ContentType("a.unknownext"))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.pdf"), "b")
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "c")

	files, err := Expand([]string{
		filepath.Join(dir, "**", "*.pdf"),
		filepath.Join(dir, "a.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "sub", "b.pdf"),
	}, files)

	_, err = Expand([]string{filepath.Join(dir, "*.docx")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Expand([]string{filepath.Join(dir, "sub")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "directories are not files")
}
