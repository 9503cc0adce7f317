package tui

import "errors"

// ErrMissingChatSession is returned when the chat session is not provided.
var ErrMissingChatSession = errors.New("tui: chat session is required")

// ErrMissingDocumentCoordinator is returned when the document coordinator is not provided.
var ErrMissingDocumentCoordinator = errors.New("tui: document coordinator is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
