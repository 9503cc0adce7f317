// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// ErrNoSettings indicates the settings service was not provided.
var ErrNoSettings = errors.New("settings service not available")

const unset = "(not set)"

// View lists every configuration key and edits one value at a time.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	editor    *input.Prompt
	statusbar *status.Bar

	service  driving.SettingsService
	settings *domain.AppSettings
	keys     []string

	selected int
	offset   int
	editing  bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	editor := input.NewPrompt(s, "Value:", "empty clears optional settings")
	editor.Blur()

	v := &View{
		styles:    s,
		keymap:    km,
		editor:    editor,
		statusbar: status.NewBar(s, km),
		service:   service,
		width:     80,
		height:    24,
	}
	if service != nil {
		v.keys = service.Keys()
	}
	v.statusbar.SetHints(km.SettingsHelp())
	return v
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	service := v.service
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsLoaded{Err: ErrNoSettings}
		}
		settings, err := service.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) save(key, value string) tea.Cmd {
	service := v.service
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsSaved{Key: key, Err: ErrNoSettings}
		}
		return messages.SettingsSaved{Key: key, Err: service.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.settings = msg.Settings
		v.err = nil
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.statusbar.Notify("Saved "+msg.Key, false)
		return v, v.load()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleListKey(msg)
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
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
		v.scroll()
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
		v.scroll()
	case keymap.Matches(key, v.keymap.Select):
		k := v.SelectedKey()
		if k == "" {
			return v, nil
		}
		v.editing = true
		v.editor.Reset()
		if value := Value(v.settings, k); value != unset {
			v.editor.SetValue(value)
		}
		return v, v.editor.Focus()
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = false
		v.editor.Blur()
		return v, nil
	case tea.KeyEnter:
		v.editing = false
		v.editor.Blur()
		return v, v.save(v.SelectedKey(), v.editor.Value())
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// visibleRows is the number of key rows that fit between the title and the status bar.
func (v *View) visibleRows() int {
	rows := v.height - 8
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (v *View) scroll() {
	rows := v.visibleRows()
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+rows {
		v.offset = v.selected - rows + 1
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if len(v.keys) == 0 {
		b.WriteString(v.styles.Muted.Render("No settings available"))
	} else {
		keyWidth := 0
		for _, k := range v.keys {
			keyWidth = max(keyWidth, len(k))
		}

		end := min(v.offset+v.visibleRows(), len(v.keys))
		for i := v.offset; i < end; i++ {
			k := v.keys[i]
			line := fmt.Sprintf("%-*s  %s", keyWidth, k, Value(v.settings, k))
			if i == v.selected {
				b.WriteString(v.styles.Selected.Render("> " + line))
			} else {
				b.WriteString(v.styles.Normal.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	if v.editing {
		b.WriteString("\n")
		b.WriteString(v.editor.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.editor.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.scroll()
}

// SelectedKey returns the highlighted configuration key.
func (v *View) SelectedKey() string {
	if v.selected < 0 || v.selected >= len(v.keys) {
		return ""
	}
	return v.keys[v.selected]
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Settings returns the last loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Value formats the current value of a configuration key.
func Value(s *domain.AppSettings, key string) string {
	if s == nil {
		return unset
	}
	o := s.Chat.Overrides

	switch key {
	case "backend.base_url":
		return text(s.Backend.BaseURL)
	case "backend.timeout_seconds":
		return strconv.Itoa(s.Backend.TimeoutSeconds)
	case "backend.requests_per_second":
		return strconv.FormatFloat(s.Backend.RequestsPerSecond, 'g', -1, 64)
	case "chat.approach":
		return s.Chat.Approach.String()
	case "chat.retrieval_mode":
		return o.RetrievalMode.String()
	case "chat.semantic_ranker":
		return strconv.FormatBool(o.SemanticRanker)
	case "chat.semantic_captions":
		return optional(o.SemanticCaptions, strconv.FormatBool)
	case "chat.exclude_category":
		return optional(o.ExcludeCategory, text)
	case "chat.top":
		return optional(o.Top, strconv.Itoa)
	case "chat.temperature":
		return optional(o.Temperature, strconv.Itoa)
	case "chat.prompt_template":
		return optional(o.PromptTemplate, text)
	case "chat.prompt_template_prefix":
		return optional(o.PromptTemplatePrefix, text)
	case "chat.prompt_template_suffix":
		return optional(o.PromptTemplateSuffix, text)
	case "chat.suggest_followup_questions":
		return strconv.FormatBool(o.SuggestFollowupQuestions)
	case "upload.max_file_size":
		return strconv.FormatInt(s.Upload.MaxFileSize, 10)
	case "upload.patterns":
		return text(strings.Join(s.Upload.Patterns, ", "))
	case "log.file":
		return text(s.LogFile)
	}
	return unset
}

func text(s string) string {
	if s == "" {
		return unset
	}
	return s
}

func optional[T any](p *T, format func(T) string) string {
	if p == nil {
		return unset
	}
	return format(*p)
}
