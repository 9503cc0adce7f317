// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/watch"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// ErrNoDocuments indicates the document coordinator was not provided.
var ErrNoDocuments = errors.New("document coordinator not available")

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeList Mode = iota
	ModeFilter
	ModeUpload
)

// View is the documents list view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.DocumentList
	filter    *input.Prompt
	upload    *input.Prompt
	statusbar *status.Bar

	documents driving.DocumentCoordinator
	files     driven.FileSource
	ctx       context.Context

	mode    Mode
	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new documents view. files may be nil, which disables upload.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	documents driving.DocumentCoordinator,
	files driven.FileSource,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	filter := input.NewPrompt(s, "Filter:", "part of a document name")
	filter.Blur()
	upload := input.NewPrompt(s, "Upload:", "paths or globs, e.g. ~/reports/*.pdf")
	upload.Blur()

	v := &View{
		styles:    s,
		keymap:    km,
		list:      list.NewDocumentList(s),
		filter:    filter,
		upload:    upload,
		statusbar: status.NewBar(s, km),
		documents: documents,
		files:     files,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.statusbar.SetHints(km.DocumentsHelp())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the document list.
func (v *View) Init() tea.Cmd {
	return v.refresh()
}

func (v *View) refresh() tea.Cmd {
	v.loading = true
	docs, ctx := v.documents, v.ctx
	return func() tea.Msg {
		if docs == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocuments}
		}
		err := docs.Refresh(ctx)
		return messages.DocumentsLoaded{Documents: docs.Documents(), Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case ModeFilter:
			return v.handleFilterKey(msg)
		case ModeUpload:
			return v.handleUploadKey(msg)
		default:
			return v.handleListKey(msg)
		}

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.setError(msg.Err)
		} else {
			v.err = nil
			v.statusbar.Clear()
		}
		v.applyFilter()
		return v, nil

	case messages.DocumentOpened:
		if msg.Err != nil {
			v.setError(msg.Err)
		} else {
			v.statusbar.Notify("Opened "+msg.Name, false)
		}
		return v, nil

	case messages.UploadCompleted:
		v.handleUploadCompleted(msg)
		return v, nil

	case messages.NoticesReceived:
		if n := len(msg.Notices); n > 0 {
			latest := msg.Notices[n-1]
			v.statusbar.Notify(latest.Message, latest.IsError)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) handleListKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Up), keymap.Matches(key, v.keymap.Down):
		v.list, _ = v.list.Update(msg)
	case keymap.Matches(key, v.keymap.Select):
		if doc := v.list.SelectedDocument(); doc != nil {
			return v, v.open(doc.Name)
		}
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.refresh()
	case keymap.Matches(key, v.keymap.Filter):
		v.mode = ModeFilter
		return v, v.filter.Focus()
	case keymap.Matches(key, v.keymap.Upload):
		if v.files == nil {
			v.setError(errors.New("upload is not available"))
			return v, nil
		}
		v.mode = ModeUpload
		v.upload.Reset()
		return v, v.upload.Focus()
	}
	return v, nil
}

func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filter.Reset()
		v.leaveInput()
		v.applyFilter()
		return v, nil
	case tea.KeyEnter:
		v.leaveInput()
		return v, nil
	}

	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.applyFilter()
	return v, cmd
}

func (v *View) handleUploadKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.upload.Reset()
		v.leaveInput()
		return v, nil
	case tea.KeyEnter:
		args := strings.Fields(v.upload.Value())
		v.leaveInput()
		if len(args) == 0 {
			return v, nil
		}
		v.statusbar.SetState(status.StateWaiting)
		v.statusbar.SetMessage("Uploading...")
		return v, v.submitUpload(args)
	}

	var cmd tea.Cmd
	v.upload, cmd = v.upload.Update(msg)
	return v, cmd
}

func (v *View) leaveInput() {
	v.mode = ModeList
	v.filter.Blur()
	v.upload.Blur()
}

func (v *View) applyFilter() {
	if v.documents == nil {
		v.list.SetDocuments(nil)
		return
	}
	docs := v.documents.Filter(v.filter.Value())
	v.list.SetDocuments(docs)
	if v.err == nil && v.statusbar.State() == status.StateReady {
		v.statusbar.SetCount(len(docs), "documents")
	}
}

func (v *View) open(name string) tea.Cmd {
	docs, ctx := v.documents, v.ctx
	return func() tea.Msg {
		if docs == nil {
			return messages.DocumentOpened{Name: name, Err: ErrNoDocuments}
		}
		return messages.DocumentOpened{Name: name, Err: docs.OpenDocument(ctx, name)}
	}
}

// submitUpload expands args, opens every file and uploads them as one batch.
func (v *View) submitUpload(args []string) tea.Cmd {
	docs, files, ctx := v.documents, v.files, v.ctx
	return func() tea.Msg {
		if docs == nil {
			return messages.UploadCompleted{Err: ErrNoDocuments}
		}
		paths, err := watch.Expand(args)
		if err != nil {
			return messages.UploadCompleted{Err: err}
		}

		uploads := make([]domain.UploadFile, 0, len(paths))
		closers := make([]io.Closer, 0, len(paths))
		defer func() {
			for _, c := range closers {
				_ = c.Close()
			}
		}()
		for _, p := range paths {
			f, c, err := files.Open(p)
			if err != nil {
				return messages.UploadCompleted{Err: fmt.Errorf("open %s: %w", p, err)}
			}
			uploads = append(uploads, f)
			closers = append(closers, c)
		}

		result, err := docs.SubmitUpload(ctx, uploads)
		return messages.UploadCompleted{Result: result, Err: err}
	}
}

func (v *View) handleUploadCompleted(msg messages.UploadCompleted) {
	switch {
	case msg.Err != nil:
		v.setError(msg.Err)
	case msg.Result == nil:
		v.statusbar.Clear()
	case msg.Result.IsSuccessful:
		v.err = nil
		v.statusbar.Notify(fmt.Sprintf("Uploaded %d documents.", len(msg.Result.UploadedFiles)), false)
	default:
		v.statusbar.Notify(msg.Result.Error, true)
	}
	// The coordinator refreshes after every upload.
	v.applyFilter()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", v.list.Count())))
	b.WriteString("\n\n")

	switch {
	case v.mode == ModeFilter || v.filter.Value() != "":
		b.WriteString(v.filter.View())
		b.WriteString("\n\n")
	case v.mode == ModeUpload:
		b.WriteString(v.upload.View())
		b.WriteString("\n\n")
	}

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	} else {
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.filter.SetWidth(width)
	v.upload.SetWidth(width)
	v.statusbar.SetWidth(width)
	// Title, prompt and status bar
	v.list.SetDimensions(width, height-8)
}

// Mode returns what the keyboard currently drives.
func (v *View) Mode() Mode {
	return v.mode
}

// Documents returns the listed documents.
func (v *View) Documents() []domain.DocumentDescriptor {
	return v.list.Documents()
}

// SelectedDocument returns the highlighted document.
func (v *View) SelectedDocument() *domain.DocumentDescriptor {
	return v.list.SelectedDocument()
}

// Loading reports whether a refresh is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
