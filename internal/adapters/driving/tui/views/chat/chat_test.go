package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// fakeSession implements driving.ChatSession for testing.
type fakeSession struct {
	mu       sync.Mutex
	history  []domain.Exchange
	input    string
	state    domain.SessionState
	cleared  int
	answerFn func(question string) *domain.ApproachResponse
}

var _ driving.ChatSession = (*fakeSession)(nil)

func (f *fakeSession) Submit(_ context.Context, question string) (*domain.Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	answer := f.answerFn(question)
	ex := domain.Exchange{Question: question, Answer: answer}
	f.history = append(f.history, ex)
	if !answer.IsError() {
		f.input = ""
	}
	return &ex, nil
}

func (f *fakeSession) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = nil
	f.input = ""
	f.cleared++
}

func (f *fakeSession) History() []domain.Exchange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Exchange(nil), f.history...)
}

func (f *fakeSession) State() domain.SessionState { return f.state }
func (f *fakeSession) Input() string { return f.input }
func (f *fakeSession) SetInput(text string) { f.input = text }
func (f *fakeSession) LastQuestion() string { return "" }

func (f *fakeSession) Settings() domain.RequestSettings {
	return domain.DefaultRequestSettings()
}

func (f *fakeSession) SetSettings(domain.RequestSettings) error { return nil }

// fakeDocuments records opened citations.
type fakeDocuments struct {
	opened []domain.CitationDetails
	err    error
}

var _ driving.DocumentCoordinator = (*fakeDocuments)(nil)

func (f *fakeDocuments) Refresh(context.Context) error { return nil }
func (f *fakeDocuments) Documents() []domain.DocumentDescriptor { return nil }
func (f *fakeDocuments) Filter(string) []domain.DocumentDescriptor { return nil }
func (f *fakeDocuments) OpenDocument(context.Context, string) error { return nil }
func (f *fakeDocuments) Close() {}
func (f *fakeDocuments) SubmitUpload(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
	return nil, nil
}

func (f *fakeDocuments) OpenCitation(_ context.Context, c domain.CitationDetails) error {
	f.opened = append(f.opened, c)
	return f.err
}

func benefitsAnswer(string) *domain.ApproachResponse {
	return &domain.ApproachResponse{
		Answer:          "Dental is covered [benefits.pdf] and so is vision [vision.pdf]. <<What about family?>> <<Is there a deductible?>>",
		CitationBaseURL: "https://docs.example/content",
		DataPoints: []domain.SupportingContent{
			{Title: "benefits.pdf", Content: "dental"},
			{Title: "vision.pdf", Content: "vision"},
		},
	}
}

func newTestView(session *fakeSession, docs *fakeDocuments) *View {
	var coordinator driving.DocumentCoordinator
	if docs != nil {
		coordinator = docs
	}
	v := NewView(styles.DefaultStyles(), nil, session, coordinator)
	v.SetDimensions(120, 60)
	return v
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ask types a question, submits it and delivers the answer.
func ask(t *testing.T, v *View, question string) {
	t.Helper()
	typeText(v, question)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.False(t, v.Ready())
	assert.False(t, v.Browsing())
	assert.NotNil(t, v.Init())
	assert.Contains(t, v.View(), "Initialising")
}

func TestView_EmptyTranscript(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)

	assert.Contains(t, v.View(), "Ask a question about your documents")
}

func TestView_TypingMirrorsSessionInput(t *testing.T) {
	session := &fakeSession{answerFn: benefitsAnswer}
	v := newTestView(session, nil)

	typeText(v, "dental?")

	assert.Equal(t, "dental?", v.Input())
	assert.Equal(t, "dental?", session.Input())
}

func TestView_SubmitAndAnswer(t *testing.T) {
	session := &fakeSession{answerFn: benefitsAnswer}
	v := newTestView(session, nil)

	ask(t, v, "What is covered?")

	require.NoError(t, v.Err())
	assert.Equal(t, "", v.Input())
	assert.Len(t, v.LastAnswer().Citations, 2)

	transcript := v.Transcript()
	assert.Contains(t, transcript, "You: What is covered?")
	assert.Contains(t, transcript, "Dental is covered")
	assert.Contains(t, transcript, "[1] benefits.pdf")
	assert.Contains(t, transcript, "[2] vision.pdf")
	assert.Contains(t, transcript, "What about family?")
	assert.Contains(t, v.View(), "2 citations")
}

func TestView_SubmitBlankIsNoop(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)
	typeText(v, "   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_ShowsPendingQuestion(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)
	typeText(v, "Still there?")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	transcript := v.Transcript()
	assert.Contains(t, transcript, "You: Still there?")
	assert.Contains(t, transcript, "Thinking...")
}

func TestView_FailedAnswerKeepsInput(t *testing.T) {
	session := &fakeSession{answerFn: func(string) *domain.ApproachResponse {
		return domain.NewHTTPFailureResponse(500, "Internal Server Error")
	}}
	v := newTestView(session, nil)

	ask(t, v, "What is covered?")

	require.Error(t, v.Err())
	assert.Contains(t, v.Err().Error(), "HTTP 500")
	assert.Equal(t, "What is covered?", v.Input())
	assert.Contains(t, v.Transcript(), "HTTP 500 : Internal Server Error")
}

func TestView_BusySession(t *testing.T) {
	session := &fakeSession{answerFn: benefitsAnswer, state: domain.SessionAwaitingResponse}
	v := newTestView(session, nil)
	typeText(v, "again")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrSessionBusy)
}

func TestView_NoSession(t *testing.T) {
	v := NewView(nil, nil, nil, nil)
	v.SetDimensions(80, 24)
	typeText(v, "hello")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), ErrNoChatSession)
	assert.Contains(t, v.Transcript(), ErrNoChatSession.Error())
}

func TestView_LateAnswerAfterClearIsIgnored(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)

	v.Update(messages.AnswerReceived{Err: domain.ErrConversationCleared})

	assert.NoError(t, v.Err())
}

func TestView_TransportErrorShown(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)

	v.Update(messages.AnswerReceived{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Contains(t, v.View(), "Error: boom")
}

func TestView_BrowseAndOpenCitations(t *testing.T) {
	docs := &fakeDocuments{}
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, docs)
	ask(t, v, "What is covered?")

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, v.Browsing())
	assert.Contains(t, v.Transcript(), "> [1] benefits.pdf")

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedCitation())

	// Can't move past the last citation
	v.Update(runes("j"))
	assert.Equal(t, 1, v.SelectedCitation())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	require.Len(t, docs.opened, 1)
	assert.Equal(t, "vision.pdf", docs.opened[0].Name)
	assert.Equal(t, "https://docs.example/content", docs.opened[0].BaseURL)
	assert.Contains(t, v.View(), "Opened vision.pdf")

	_, cmd = v.Update(runes("1"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "benefits.pdf", docs.opened[1].Name)
	assert.Equal(t, 0, v.SelectedCitation())

	_, cmd = v.Update(runes("7"))
	assert.Nil(t, cmd)
}

func TestView_OpenCitationError(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)
	ask(t, v, "What is covered?")
	v.Update(tea.KeyMsg{Type: tea.KeyTab})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), ErrNoViewer)
}

func TestView_FollowupFillsPrompt(t *testing.T) {
	session := &fakeSession{answerFn: benefitsAnswer}
	v := newTestView(session, nil)
	ask(t, v, "What is covered?")
	v.Update(tea.KeyMsg{Type: tea.KeyTab})

	v.Update(runes("f"))

	assert.False(t, v.Browsing())
	assert.Equal(t, "What about family?", v.Input())
	assert.Equal(t, "What about family?", session.Input())

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(runes("f"))
	assert.Equal(t, "Is there a deductible?", v.Input())
}

func TestView_ToggleSources(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)
	ask(t, v, "What is covered?")
	assert.NotContains(t, v.Transcript(), "- benefits.pdf: dental")

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(runes("s"))

	assert.True(t, v.ShowingSources())
	assert.Contains(t, v.Transcript(), "- benefits.pdf: dental")
	assert.Contains(t, v.Transcript(), "- vision.pdf: vision")

	v.Update(runes("s"))
	assert.False(t, v.ShowingSources())
	assert.NotContains(t, v.Transcript(), "- benefits.pdf: dental")
}

func TestView_NewQuestionLeavesBrowse(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, v.Browsing())

	v.Update(runes("n"))

	assert.False(t, v.Browsing())
}

func TestView_ClearConversation(t *testing.T) {
	session := &fakeSession{answerFn: benefitsAnswer}
	v := newTestView(session, nil)
	ask(t, v, "What is covered?")

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, 1, session.cleared)
	assert.Empty(t, v.LastAnswer().Citations)
	assert.Contains(t, v.View(), "Conversation cleared.")
	assert.Contains(t, v.Transcript(), "Ask a question")
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ScrollsLongTranscript(t *testing.T) {
	v := newTestView(&fakeSession{answerFn: benefitsAnswer}, nil)
	v.SetDimensions(120, 14) // five transcript lines
	for i := 0; i < 4; i++ {
		ask(t, v, "What is covered?")
	}

	bottom := v.visibleTranscript()
	v.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	scrolled := v.visibleTranscript()
	assert.NotEqual(t, bottom, scrolled)

	v.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, bottom, v.visibleTranscript())
}
