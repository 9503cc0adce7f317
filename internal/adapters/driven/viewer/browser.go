// Package viewer opens backend documents outside the terminal.
package viewer

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Ensure Browser implements the DocumentViewer interface.
var _ driven.DocumentViewer = (*Browser)(nil)

// Launcher starts the program that displays url.
type Launcher func(ctx context.Context, url string) error

// Browser opens documents in the system default browser.
type Browser struct {
	fallbackBase string
	launch       Launcher
}

// NewBrowser creates a viewer. fallbackBase is used when a document carries
// no base URL of its own, normally the documents endpoint of the backend.
func NewBrowser(fallbackBase string) *Browser {
	return &Browser{fallbackBase: fallbackBase, launch: openURL}
}

// WithLauncher replaces how URLs are opened.
func (b *Browser) WithLauncher(launch Launcher) *Browser {
	b.launch = launch
	return b
}

// Open composes the document URL and hands it to the browser.
func (b *Browser) Open(ctx context.Context, name, baseURL string) error {
	target, err := b.URL(name, baseURL)
	if err != nil {
		return err
	}
	logger.Debug("Opening %s", target)
	if err := b.launch(ctx, target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

// URL returns the location Open would show.
func (b *Browser) URL(name, baseURL string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: document name is empty", domain.ErrInvalidInput)
	}
	if baseURL == "" {
		baseURL = b.fallbackBase
	}
	if baseURL == "" {
		return "", fmt.Errorf("%w: no base URL for %q", domain.ErrInvalidInput, name)
	}
	return domain.CitationURL(baseURL, name), nil
}

// openURL opens a URL using the system default handler. The handler runs
// detached from ctx so it outlives the command that asked for it.
func openURL(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("Viewer exited: %v", err)
		}
	}()
	return nil
}
