package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// fakeChat answers every question with the next queued response.
type fakeChat struct {
	responses []*domain.ApproachResponse
	err       error
	questions []string
	inputs    []string
	cleared   int
}

var _ driving.ChatSession = (*fakeChat)(nil)

func (f *fakeChat) Submit(_ context.Context, question string) (*domain.Exchange, error) {
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(question) == "" {
		return nil, nil
	}
	f.questions = append(f.questions, question)
	var resp *domain.ApproachResponse
	if len(f.responses) > 0 {
		resp = f.responses[0]
		if len(f.responses) > 1 {
			f.responses = f.responses[1:]
		}
	}
	return &domain.Exchange{Question: question, Answer: resp}, nil
}

func (f *fakeChat) Clear() { f.cleared++ }

func (f *fakeChat) History() []domain.Exchange { return nil }

func (f *fakeChat) State() domain.SessionState { return domain.SessionIdle }

func (f *fakeChat) Input() string { return "" }

func (f *fakeChat) SetInput(text string) { f.inputs = append(f.inputs, text) }

func (f *fakeChat) LastQuestion() string { return "" }

func (f *fakeChat) Settings() domain.RequestSettings { return domain.DefaultRequestSettings() }

func (f *fakeChat) SetSettings(domain.RequestSettings) error { return nil }

// fakeDocs is an in-memory document coordinator.
type fakeDocs struct {
	docs       []domain.DocumentDescriptor
	refreshErr error
	openErr    error
	result     *domain.UploadResult
	uploadErr  error
	opened     []string
	cited      []domain.CitationDetails
	uploaded   []domain.UploadFile
}

var _ driving.DocumentCoordinator = (*fakeDocs)(nil)

func (f *fakeDocs) Refresh(context.Context) error { return f.refreshErr }

func (f *fakeDocs) Documents() []domain.DocumentDescriptor { return f.docs }

func (f *fakeDocs) Filter(query string) []domain.DocumentDescriptor {
	var out []domain.DocumentDescriptor
	for _, d := range f.docs {
		if d.MatchesName(query) {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeDocs) SubmitUpload(_ context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	f.uploaded = append(f.uploaded, files...)
	return f.result, f.uploadErr
}

func (f *fakeDocs) OpenDocument(_ context.Context, name string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, name)
	return nil
}

func (f *fakeDocs) OpenCitation(_ context.Context, c domain.CitationDetails) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.cited = append(f.cited, c)
	return nil
}

func (f *fakeDocs) Close() {}

// fakeFiles hands out in-memory files named after the path.
type fakeFiles struct {
	closed int
}

var _ driven.FileSource = (*fakeFiles)(nil)

func (f *fakeFiles) Open(path string) (domain.UploadFile, io.Closer, error) {
	return domain.UploadFile{
		Name:        filepath.Base(path),
		ContentType: "application/pdf",
		Size:        4,
		Content:     strings.NewReader("%PDF"),
	}, closer{f}, nil
}

type closer struct{ f *fakeFiles }

func (c closer) Close() error {
	c.f.closed++
	return nil
}

// fakeAuth records logins.
type fakeAuth struct {
	token      *domain.AuthToken
	loginErr   error
	claims     *domain.TokenClaims
	claimsErr  error
	visible    bool
	visibleErr error
	creds      domain.Credentials
	loggedOut  bool
}

var _ driving.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Login(_ context.Context, creds domain.Credentials) (*domain.AuthToken, error) {
	f.creds = creds
	return f.token, f.loginErr
}

func (f *fakeAuth) Logout() { f.loggedOut = true }

func (f *fakeAuth) Claims() (*domain.TokenClaims, error) { return f.claims, f.claimsErr }

func (f *fakeAuth) LogoutVisible(context.Context) (bool, error) { return f.visible, f.visibleErr }

// fakeImages returns a fixed image response.
type fakeImages struct {
	resp   *domain.ImageResponse
	err    error
	prompt string
}

var _ driving.ImageService = (*fakeImages)(nil)

func (f *fakeImages) Generate(_ context.Context, prompt string) (*domain.ImageResponse, error) {
	f.prompt = prompt
	return f.resp, f.err
}

// fakeScheduler returns immediately with a canned history.
type fakeScheduler struct {
	history  []domain.SyncResult
	startErr error
	dir      string
}

var _ driving.UploadScheduler = (*fakeScheduler)(nil)

func (f *fakeScheduler) Start(_ context.Context, dir string) error {
	f.dir = dir
	return f.startErr
}

func (f *fakeScheduler) Stop() error { return nil }

func (f *fakeScheduler) History() []domain.SyncResult { return f.history }

// fakeSettings keeps settings in memory and records Set calls.
type fakeSettings struct {
	settings domain.AppSettings
	sets     map[string]string
	saved    int
	setErr   error
}

var _ driving.SettingsService = (*fakeSettings)(nil)

func newFakeSettings() *fakeSettings {
	return &fakeSettings{settings: domain.DefaultAppSettings(), sets: make(map[string]string)}
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Save(s *domain.AppSettings) error {
	f.settings = *s
	f.saved++
	return nil
}

func (f *fakeSettings) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets[key] = value
	return nil
}

func (f *fakeSettings) Keys() []string {
	return []string{"backend.base_url", "chat.approach"}
}

func (f *fakeSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// execute runs the root command against s with stdin as input.
func execute(t *testing.T, s *Services, stdin string, args ...string) (string, string, error) {
	t.Helper()

	SetServices(s)
	t.Cleanup(func() {
		SetServices(nil)
		askShowSources, askJSON = false, false
		docsFilter = ""
		loginUsername = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
