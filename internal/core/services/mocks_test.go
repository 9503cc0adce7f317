package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// mockBackend implements driven.BackendClient for testing.
type mockBackend struct {
	mu sync.Mutex

	chatFn   func(ctx context.Context, req domain.ChatRequest) domain.ChatResult
	listFn   func(ctx context.Context) ([]domain.DocumentDescriptor, bool)
	uploadFn func(ctx context.Context, files []domain.UploadFile, max int64) *domain.UploadResult
	authFn   func(ctx context.Context, creds domain.Credentials) *domain.AuthToken
	imageFn  func(ctx context.Context, req domain.PromptRequest) (*domain.ImageResponse, error)
	logoutFn func(ctx context.Context) (bool, error)

	chatRequests []domain.ChatRequest
	listCalls    int
	uploads      [][]domain.UploadFile
	uploadMax    int64
}

var _ driven.BackendClient = (*mockBackend)(nil)

func (m *mockBackend) SendChat(ctx context.Context, req domain.ChatRequest) domain.ChatResult {
	m.mu.Lock()
	m.chatRequests = append(m.chatRequests, req)
	fn := m.chatFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return answered(req, "ok")
}

func (m *mockBackend) ListDocuments(ctx context.Context) ([]domain.DocumentDescriptor, bool) {
	m.mu.Lock()
	m.listCalls++
	fn := m.listFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return []domain.DocumentDescriptor{}, true
}

func (m *mockBackend) UploadDocuments(
	ctx context.Context,
	files []domain.UploadFile,
	maxSizePerFile int64,
) *domain.UploadResult {
	m.mu.Lock()
	m.uploads = append(m.uploads, files)
	m.uploadMax = maxSizePerFile
	fn := m.uploadFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, files, maxSizePerFile)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return &domain.UploadResult{UploadedFiles: names, IsSuccessful: true}
}

func (m *mockBackend) Authenticate(ctx context.Context, creds domain.Credentials) *domain.AuthToken {
	if m.authFn != nil {
		return m.authFn(ctx, creds)
	}
	return nil
}

func (m *mockBackend) RequestImage(ctx context.Context, req domain.PromptRequest) (*domain.ImageResponse, error) {
	if m.imageFn != nil {
		return m.imageFn(ctx, req)
	}
	return &domain.ImageResponse{}, nil
}

func (m *mockBackend) ShowLogout(ctx context.Context) (bool, error) {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return false, nil
}

func (m *mockBackend) requests() []domain.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ChatRequest(nil), m.chatRequests...)
}

func (m *mockBackend) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *mockBackend) uploadBatches() [][]domain.UploadFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.UploadFile(nil), m.uploads...)
}

// answered builds a successful chat result.
func answered(req domain.ChatRequest, answer string) domain.ChatResult {
	return domain.ChatResult{
		IsSuccessful: true,
		Response: &domain.ApproachResponse{
			Answer:     answer,
			DataPoints: []domain.SupportingContent{},
		},
		Approach: req.Approach,
		Request:  req,
	}
}

// mockNotifier records notifications.
type mockNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *mockNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *mockNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

// mockViewer records opened documents.
type mockViewer struct {
	opened [][2]string
	err    error
}

func (v *mockViewer) Open(_ context.Context, name, baseURL string) error {
	v.opened = append(v.opened, [2]string{name, baseURL})
	return v.err
}

// mockTokens implements driven.TokenHolder.
type mockTokens struct {
	token string
}

func (t *mockTokens) SetToken(token string) { t.token = token }
func (t *mockTokens) Token() string         { return t.token }

// mockInspector implements driven.TokenInspector.
type mockInspector struct {
	claims *domain.TokenClaims
	err    error
	seen   string
}

func (i *mockInspector) Inspect(token string) (*domain.TokenClaims, error) {
	i.seen = token
	return i.claims, i.err
}

// mockWatcher hands out a channel controlled by the test.
type mockWatcher struct {
	events chan string
	err    error
	dir    string
}

func (w *mockWatcher) Watch(_ context.Context, dir string) (<-chan string, error) {
	w.dir = dir
	if w.err != nil {
		return nil, w.err
	}
	return w.events, nil
}

// mockFiles serves file contents from a map.
type mockFiles struct {
	mu       sync.Mutex
	contents map[string]string
	closed   int
}

func (f *mockFiles) Open(path string) (domain.UploadFile, io.Closer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	content, ok := f.contents[path]
	if !ok {
		return domain.UploadFile{}, nil, io.ErrUnexpectedEOF
	}
	file := domain.UploadFile{
		Name:    path,
		Size:    int64(len(content)),
		Content: strings.NewReader(content),
	}
	return file, closerFunc(func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.closed++
		return nil
	}), nil
}

func (f *mockFiles) closedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }
