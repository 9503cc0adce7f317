package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoChatSession indicates that no chat session was provided.
	ErrNoChatSession = errors.New("chat session is required")

	// ErrNoViewer indicates citations cannot be opened.
	ErrNoViewer = errors.New("document viewer is not available")
)
