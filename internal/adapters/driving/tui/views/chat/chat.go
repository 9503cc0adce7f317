// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/render"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// View is the conversation view: a transcript above a question prompt.
//
// The prompt mirrors the session's input so a failed question stays
// editable. In browse mode the keys select and open citations of the
// latest answer instead of editing the prompt.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	statusbar *status.Bar
	renderer  *render.Renderer

	session   driving.ChatSession
	documents driving.DocumentCoordinator
	ctx       context.Context

	width  int
	height int
	ready  bool
	err    error

	browsing bool
	sources  bool
	pending  string
	last     domain.ParsedAnswer
	citation int
	followup int
	scroll   int // lines scrolled back from the bottom
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	session driving.ChatSession,
	documents driving.DocumentCoordinator,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewPrompt(s, "Ask:", "Type a question and press enter..."),
		statusbar: status.NewBar(s, km),
		renderer:  render.New(),
		session:   session,
		documents: documents,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.statusbar.SetHints(km.ChatHelp())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.statusbar.Tick())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.CitationOpened:
		if msg.Err != nil {
			v.setError(msg.Err)
		} else {
			v.statusbar.Notify("Opened "+msg.Citation.Name, false)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	switch msg.String() {
	case "ctrl+l":
		v.clear()
		return v, nil
	case "pgup":
		v.scroll += v.transcriptHeight() / 2
		return v, nil
	case "pgdown":
		v.scroll = max(v.scroll-v.transcriptHeight()/2, 0)
		return v, nil
	}

	if v.browsing {
		return v.handleBrowseKey(msg)
	}

	switch msg.Type {
	case tea.KeyEnter:
		return v, v.submit()
	case tea.KeyTab:
		v.browsing = true
		v.input.Blur()
		v.statusbar.SetHints(v.keymap.BrowseHelp())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	if v.session != nil {
		v.session.SetInput(v.input.Value())
	}
	return v, cmd
}

func (v *View) handleBrowseKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.NewQuestion):
		v.focusInput()
		return v, v.input.Focus()

	case keymap.Matches(key, v.keymap.Up):
		if v.citation > 0 {
			v.citation--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.citation < len(v.last.Citations)-1 {
			v.citation++
		}

	case keymap.Matches(key, v.keymap.Select):
		if len(v.last.Citations) > 0 {
			return v, v.openCitation(v.last.Citations[v.citation])
		}

	case keymap.Matches(key, v.keymap.Followup):
		if n := len(v.last.FollowupQuestions); n > 0 {
			v.input.SetValue(v.last.FollowupQuestions[v.followup%n])
			v.followup++
			if v.session != nil {
				v.session.SetInput(v.input.Value())
			}
			v.focusInput()
			return v, v.input.Focus()
		}

	case keymap.Matches(key, v.keymap.Sources):
		v.sources = !v.sources

	case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
		if c, ok := v.last.Citation(int(key[0] - '0')); ok {
			v.citation = int(key[0]-'0') - 1
			return v, v.openCitation(c)
		}
	}
	return v, nil
}

func (v *View) focusInput() {
	v.browsing = false
	v.statusbar.SetHints(v.keymap.ChatHelp())
}

// submit sends the prompt text as the next question.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}
	if v.session == nil {
		v.setError(ErrNoChatSession)
		return nil
	}
	if v.session.State() == domain.SessionAwaitingResponse {
		v.setError(domain.ErrSessionBusy)
		return nil
	}

	v.err = nil
	v.pending = question
	v.scroll = 0
	v.statusbar.SetState(status.StateWaiting)
	v.statusbar.SetMessage("")

	session, ctx := v.session, v.ctx
	return func() tea.Msg {
		exchange, err := session.Submit(ctx, question)
		return messages.AnswerReceived{Exchange: exchange, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = ""
	if errors.Is(msg.Err, domain.ErrConversationCleared) {
		return
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Exchange == nil || msg.Exchange.Answer == nil {
		v.statusbar.Clear()
		return
	}

	// The session clears its input only on success.
	v.input.SetValue(v.session.Input())
	v.scroll = 0

	answer := msg.Exchange.Answer
	if answer.IsError() {
		v.setError(errors.New(answer.Answer))
		return
	}

	v.err = nil
	v.last = domain.ParseAnswer(answer.Answer, answer.CitationBaseURL, answer.DataPoints)
	v.citation = 0
	v.followup = 0
	v.statusbar.Clear()
	v.statusbar.SetCount(len(v.last.Citations), "citations")
}

func (v *View) openCitation(c domain.CitationDetails) tea.Cmd {
	docs, ctx := v.documents, v.ctx
	return func() tea.Msg {
		if docs == nil {
			return messages.CitationOpened{Citation: c, Err: ErrNoViewer}
		}
		return messages.CitationOpened{Citation: c, Err: docs.OpenCitation(ctx, c)}
	}
}

func (v *View) clear() {
	if v.session != nil {
		v.session.Clear()
	}
	v.Reset()
	v.statusbar.Notify("Conversation cleared.", false)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("OmniQ Chat"),
		"",
		v.visibleTranscript(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// visibleTranscript returns the window of transcript lines that fits.
func (v *View) visibleTranscript() string {
	lines := strings.Split(v.Transcript(), "\n")
	height := v.transcriptHeight()
	if len(lines) <= height {
		return strings.Join(lines, "\n")
	}

	v.scroll = min(v.scroll, len(lines)-height)
	end := len(lines) - v.scroll
	return strings.Join(lines[end-height:end], "\n")
}

func (v *View) transcriptHeight() int {
	// Title, prompt box, status bar and spacing
	return max(v.height-9, 3)
}

// Transcript renders the whole conversation.
func (v *View) Transcript() string {
	if v.session == nil {
		return v.styles.Error.Render(ErrNoChatSession.Error())
	}

	history := v.session.History()
	if len(history) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask a question about your documents to get started.")
	}

	var b strings.Builder
	for i, ex := range history {
		v.renderExchange(&b, ex, i == len(history)-1)
	}
	if v.pending != "" && (len(history) == 0 || !history[len(history)-1].Pending()) {
		v.renderExchange(&b, domain.Exchange{Question: v.pending}, true)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *View) renderExchange(b *strings.Builder, ex domain.Exchange, latest bool) {
	b.WriteString(v.styles.Question.Render("You: " + ex.Question))
	b.WriteString("\n")

	switch {
	case ex.Pending():
		b.WriteString(v.styles.Muted.Render("Thinking..."))
		b.WriteString("\n\n")
		return
	case ex.Answer.IsError():
		b.WriteString(v.styles.Error.Render(ex.Answer.Answer))
		b.WriteString("\n\n")
		return
	}

	parsed := domain.ParseAnswer(ex.Answer.Answer, ex.Answer.CitationBaseURL, ex.Answer.DataPoints)
	body, err := v.renderer.Answer(parsed)
	if err != nil {
		body = parsed.PlainText()
	}
	b.WriteString(lipgloss.NewStyle().Width(max(v.width-2, 20)).Render(body))
	b.WriteString("\n")

	for i, c := range parsed.Citations {
		line := fmt.Sprintf("[%d] %s", c.Number, c.Name)
		switch {
		case latest && v.browsing && i == v.citation:
			b.WriteString(v.styles.Selected.Render("> " + line))
		default:
			b.WriteString("  " + v.styles.Citation.Render(line))
		}
		b.WriteString("\n")
	}

	if latest && v.sources {
		if sources := render.Sources(ex.Answer, max(v.width-4, 20)); sources != "" {
			b.WriteString(v.styles.Muted.Render(strings.TrimRight(sources, "\n")))
			b.WriteString("\n")
		}
	}

	if latest {
		for _, q := range parsed.FollowupQuestions {
			b.WriteString(v.styles.Followup.Render("  → " + q))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Browsing reports whether keys navigate citations instead of the prompt.
func (v *View) Browsing() bool {
	return v.browsing
}

// Input returns the prompt text.
func (v *View) Input() string {
	return v.input.Value()
}

// ShowingSources reports whether the latest answer's supporting content is shown.
func (v *View) ShowingSources() bool {
	return v.sources
}

// SelectedCitation returns the index of the highlighted citation.
func (v *View) SelectedCitation() int {
	return v.citation
}

// LastAnswer returns the parsed latest successful answer.
func (v *View) LastAnswer() domain.ParsedAnswer {
	return v.last
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to an empty prompt, keeping the session.
func (v *View) Reset() {
	v.focusInput()
	v.input.Focus()
	v.input.SetValue("")
	v.pending = ""
	v.sources = false
	v.last = domain.ParsedAnswer{}
	v.citation = 0
	v.followup = 0
	v.scroll = 0
	v.err = nil
	v.statusbar.Clear()
}
