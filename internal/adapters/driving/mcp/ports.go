package mcp

import (
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// Ports aggregates the collaborators the MCP server needs.
type Ports struct {
	// NewSession starts an independent conversation for a new client session.
	NewSession func() driving.ChatSession

	// Sessions keeps conversations between tool calls.
	Sessions driven.SessionStore[driving.ChatSession]

	// Documents lists backend documents. Optional.
	Documents driving.DocumentCoordinator
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.NewSession == nil {
		return ErrMissingSessionFactory
	}
	if p.Sessions == nil {
		return ErrMissingSessionStore
	}
	return nil
}
