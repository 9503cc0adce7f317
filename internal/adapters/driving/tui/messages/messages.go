// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversation view.
	ViewChat
	// ViewDocuments lists documents known to the backend.
	ViewDocuments
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// QuestionSubmitted is sent when a question leaves the input.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the outcome of a submitted question.
type AnswerReceived struct {
	Exchange *domain.Exchange
	Err      error
}

// ConversationCleared signals the conversation was reset.
type ConversationCleared struct{}

// CitationOpened signals a citation was handed to the viewer.
type CitationOpened struct {
	Citation domain.CitationDetails
	Err      error
}

// DocumentsLoaded carries the document set after a refresh.
type DocumentsLoaded struct {
	Documents []domain.DocumentDescriptor
	Err       error
}

// DocumentOpened signals a document was handed to the viewer.
type DocumentOpened struct {
	Name string
	Err  error
}

// UploadCompleted carries the outcome of an upload.
type UploadCompleted struct {
	Result *domain.UploadResult
	Err    error
}

// Notice is a user-facing notification raised by a service.
type Notice struct {
	Message string
	IsError bool
}

// NoticesReceived carries notifications drained since the last poll.
type NoticesReceived struct {
	Notices []Notice
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Key string
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
