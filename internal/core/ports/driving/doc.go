// Package driving defines what the CLI, TUI and MCP surfaces call into.
//
// Each interface is implemented in internal/core/services; surfaces hold the
// interface so tests can substitute fakes.
package driving
