// Package mcp provides an MCP (Model Context Protocol) server adapter for omniq.
// It lets AI assistants ask questions against the backend and list its documents.
package mcp

import "errors"

// ErrMissingSessionFactory is returned when no chat session factory is provided.
var ErrMissingSessionFactory = errors.New("mcp: chat session factory is required")

// ErrMissingSessionStore is returned when no session store is provided.
var ErrMissingSessionStore = errors.New("mcp: session store is required")
