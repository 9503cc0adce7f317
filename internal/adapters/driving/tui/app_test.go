package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/notify"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/services"
)

func newTestApp(t *testing.T) (*App, *MockChatSession, *MockDocumentCoordinator) {
	t.Helper()
	chat := &MockChatSession{answer: "Employees get a yearly bonus [Benefits.pdf]."}
	docs := &MockDocumentCoordinator{Docs: []domain.DocumentDescriptor{
		{Name: "Benefits.pdf", Size: 2048},
		{Name: "Handbook.pdf", Size: 4096},
	}}
	app, err := NewApp(NewPorts(chat, docs))
	require.NoError(t, err)
	app.SetDimensions(120, 40)
	return app, chat, docs
}

// run feeds msg to the app and then every message its commands produce.
func run(app *App, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := app.Update(next)
		queue = append(queue, expand(cmd)...)
	}
}

// expand executes cmd, flattening batches and dropping bubbletea internals.
func expand(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, expand(c)...)
		}
		return out
	default:
		if isAppMessage(msg) {
			return []tea.Msg{msg}
		}
		return nil
	}
}

func isAppMessage(msg tea.Msg) bool {
	switch msg.(type) {
	case messages.ViewChanged, messages.AnswerReceived, messages.CitationOpened,
		messages.DocumentsLoaded, messages.DocumentOpened, messages.UploadCompleted,
		messages.SettingsLoaded, messages.SettingsSaved, messages.ErrorOccurred:
		return true
	}
	return false
}

func TestNewApp_Success(t *testing.T) {
	app, _, _ := newTestApp(t)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.True(t, app.Ready())
	assert.NoError(t, app.Err())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Documents: &MockDocumentCoordinator{}})

	assert.ErrorIs(t, err, ErrMissingChatSession)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _, _ := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, _, _ := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app, err := NewApp(NewPorts(&MockChatSession{}, &MockDocumentCoordinator{}))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&MockChatSession{}, &MockDocumentCoordinator{}))
	require.NoError(t, err)

	_, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Equal(t, 100, app.width)
	assert.Equal(t, 30, app.height)
}

func TestApp_CtrlCQuits(t *testing.T) {
	app, _, _ := newTestApp(t)
	run(app, messages.ViewChanged{View: messages.ViewChat})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_MenuNavigatesToChat(t *testing.T) {
	app, _, _ := newTestApp(t)

	// Chat is the first menu item
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.Contains(t, app.View(), "Ask:")
}

func TestApp_AskQuestion(t *testing.T) {
	app, chat, _ := newTestApp(t)
	run(app, messages.ViewChanged{View: messages.ViewChat})

	run(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("What is the bonus?")})
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, chat.History(), 1)
	assert.Equal(t, "What is the bonus?", chat.History()[0].Question)

	view := app.View()
	assert.Contains(t, view, "What is the bonus?")
	assert.Contains(t, view, "Benefits.pdf")
}

func TestApp_ConversationSurvivesViewSwitch(t *testing.T) {
	app, _, _ := newTestApp(t)
	run(app, messages.ViewChanged{View: messages.ViewChat})
	run(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bonus?")})
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	run(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())

	run(app, messages.ViewChanged{View: messages.ViewChat})
	assert.Contains(t, app.View(), "bonus?")
}

func TestApp_DocumentsView(t *testing.T) {
	app, _, _ := newTestApp(t)

	run(app, messages.ViewChanged{View: messages.ViewDocuments})

	assert.Equal(t, messages.ViewDocuments, app.CurrentView())
	view := app.View()
	assert.Contains(t, view, "Documents (2)")
	assert.Contains(t, view, "Handbook.pdf")
}

func TestApp_UploadNoticesReachDocumentsView(t *testing.T) {
	chat := &MockChatSession{}
	recorder := notify.NewRecorder()
	docs := &MockDocumentCoordinator{}
	ports := NewPorts(chat, docs)
	ports.Notices = recorder
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(200, 40)
	run(app, messages.ViewChanged{View: messages.ViewDocuments})

	// The coordinator reports the outcome through its notifier
	recorder.Success("Uploading 1 file")
	recorder.Error(domain.UploadFailedMessage)
	run(app, messages.UploadCompleted{Result: domain.NewUploadFailure(domain.UploadFailedMessage)})

	assert.Contains(t, app.View(), "Error: "+domain.UploadFailedMessage)
	assert.Empty(t, recorder.Drain())
}

func TestApp_SettingsWithoutService(t *testing.T) {
	app, _, _ := newTestApp(t)

	run(app, messages.ViewChanged{View: messages.ViewSettings})

	assert.Equal(t, messages.ViewSettings, app.CurrentView())
	assert.Contains(t, app.View(), "No settings available")
}

func TestApp_HelpView(t *testing.T) {
	app, _, _ := newTestApp(t)

	run(app, messages.ViewChanged{View: messages.ViewHelp})
	view := app.View()
	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "citations")
	assert.Contains(t, view, "[esc] back to menu")

	// Other keys are ignored on the help screen
	run(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	run(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app, _, _ := newTestApp(t)
	run(app, messages.ViewChanged{View: messages.ViewChat})

	app.Update(messages.ErrorOccurred{Err: errors.New("backend down")})

	assert.EqualError(t, app.Err(), "backend down")
	assert.True(t, strings.Contains(app.View(), "backend down"))
}

// recordingBackend answers every question and keeps the requests it saw.
type recordingBackend struct {
	requests []domain.ChatRequest
}

var _ driven.BackendClient = (*recordingBackend)(nil)

func (b *recordingBackend) SendChat(_ context.Context, req domain.ChatRequest) domain.ChatResult {
	b.requests = append(b.requests, req)
	return domain.ChatResult{
		IsSuccessful: true,
		Approach:     req.Approach,
		Request:      req,
		Response:     &domain.ApproachResponse{Answer: "Noted."},
	}
}

func (b *recordingBackend) ListDocuments(context.Context) ([]domain.DocumentDescriptor, bool) {
	return nil, true
}

func (b *recordingBackend) UploadDocuments(context.Context, []domain.UploadFile, int64) *domain.UploadResult {
	return &domain.UploadResult{IsSuccessful: true}
}

func (b *recordingBackend) Authenticate(context.Context, domain.Credentials) *domain.AuthToken {
	return nil
}

func (b *recordingBackend) RequestImage(context.Context, domain.PromptRequest) (*domain.ImageResponse, error) {
	return nil, errors.New("not supported")
}

func (b *recordingBackend) ShowLogout(context.Context) (bool, error) { return false, nil }

func newSettingsApp(t *testing.T) (*App, *recordingBackend, *services.SettingsService) {
	t.Helper()
	backend := &recordingBackend{}
	settingsService := services.NewSettingsService(memory.NewConfigStore())
	ports := NewPorts(
		services.NewConversationSession(backend, domain.DefaultRequestSettings()),
		&MockDocumentCoordinator{},
	)
	ports.Settings = settingsService
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(200, 40)
	return app, backend, settingsService
}

func ask(app *App, question string) {
	run(app, messages.ViewChanged{View: messages.ViewChat})
	run(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(question)})
	run(app, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestApp_SavedSettingsReachNextQuestion(t *testing.T) {
	app, backend, settingsService := newSettingsApp(t)
	run(app, messages.ViewChanged{View: messages.ViewSettings})

	require.NoError(t, settingsService.Set("chat.top", "7"))
	run(app, messages.SettingsSaved{Key: "chat.top"})
	require.NoError(t, settingsService.Set("chat.approach", string(domain.ApproachRetrieveThenRead)))
	run(app, messages.SettingsSaved{Key: "chat.approach"})

	ask(app, "How many sources?")

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, domain.ApproachRetrieveThenRead, req.Approach)
	require.NotNil(t, req.Overrides)
	require.NotNil(t, req.Overrides.Top)
	assert.Equal(t, 7, *req.Overrides.Top)
}

func TestApp_FailedSaveKeepsSessionSettings(t *testing.T) {
	app, backend, settingsService := newSettingsApp(t)
	run(app, messages.ViewChanged{View: messages.ViewSettings})

	require.NoError(t, settingsService.Set("chat.top", "9"))
	run(app, messages.SettingsSaved{Key: "chat.top", Err: errors.New("disk full")})

	ask(app, "How many sources?")

	require.Len(t, backend.requests, 1)
	require.NotNil(t, backend.requests[0].Overrides.Top)
	assert.Equal(t, 3, *backend.requests[0].Overrides.Top)
}
