// Package tui provides an interactive terminal user interface for omniq.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/notify"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// NoticeSource hands over notifications collected since the last call.
// notify.Recorder satisfies it.
type NoticeSource interface {
	Drain() []notify.Notification
}

// Ports aggregates the collaborators the TUI needs.
type Ports struct {
	// Chat is the conversation the chat view drives.
	Chat driving.ChatSession

	// Documents lists, uploads and opens documents.
	Documents driving.DocumentCoordinator

	// Settings manages application settings. Optional.
	Settings driving.SettingsService

	// Files opens local files for upload. Optional; nil disables upload.
	Files driven.FileSource

	// Notices collects coordinator notifications. Optional.
	Notices NoticeSource
}

// NewPorts creates a Ports aggregate with the required services.
func NewPorts(chat driving.ChatSession, documents driving.DocumentCoordinator) *Ports {
	return &Ports{
		Chat:      chat,
		Documents: documents,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatSession
	}
	if p.Documents == nil {
		return ErrMissingDocumentCoordinator
	}
	return nil
}
