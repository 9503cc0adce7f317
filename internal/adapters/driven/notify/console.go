package notify

import (
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
)

// Ensure Console implements the Notifier interface.
var _ driven.Notifier = (*Console)(nil)

// Console writes notifications as single lines.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	success *color.Color
	failure *color.Color
}

// NewConsole creates a notifier writing to out.
// Colour is applied only when useColor is true.
func NewConsole(out io.Writer, useColor bool) *Console {
	success := color.New(color.FgGreen)
	failure := color.New(color.FgRed, color.Bold)
	if useColor {
		success.EnableColor()
		failure.EnableColor()
	} else {
		success.DisableColor()
		failure.DisableColor()
	}
	return &Console{out: out, success: success, failure: failure}
}

// Success implements driven.Notifier.
func (c *Console) Success(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.success.Fprintln(c.out, "✓ "+message)
}

// Error implements driven.Notifier.
func (c *Console) Error(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.failure.Fprintln(c.out, "✗ "+message)
}
