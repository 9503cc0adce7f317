// Package cli implements the omniq command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// version is set at build time.
var version = "dev"

// Options holds the global flags.
type Options struct {
	Verbose   bool
	ConfigDir string
	BaseURL   string
	LogFile   string

	// Interactive is set when the command owns the terminal, such as the TUI.
	// Notifications then go to Services.Notices instead of the console.
	Interactive bool
}

// Services holds the collaborators commands work with.
type Services struct {
	Chat      driving.ChatSession
	Documents driving.DocumentCoordinator
	Auth      driving.AuthService
	Settings  driving.SettingsService
	Images    driving.ImageService
	Scheduler driving.UploadScheduler
	Files     driven.FileSource

	// Notices collects coordinator notifications in interactive mode.
	Notices tui.NoticeSource

	// NewSession creates an independent conversation, used by the MCP server.
	NewSession func() driving.ChatSession

	// Sessions keeps MCP conversations between tool calls.
	Sessions driven.SessionStore[driving.ChatSession]

	// BaseURL is the backend the services talk to.
	BaseURL string

	// Close releases resources when the command finishes.
	Close func()
}

// Bootstrap builds services once the global flags are known.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	bootstrap Bootstrap
	options   Options
	services  *Services
)

// Service handles used by commands.
var (
	chatSession     driving.ChatSession
	documentCoord   driving.DocumentCoordinator
	authService     driving.AuthService
	settingsService driving.SettingsService
	imageService    driving.ImageService
	uploadScheduler driving.UploadScheduler
	fileSource      driven.FileSource
)

var rootCmd = &cobra.Command{
	Use:   "omniq",
	Short: "Chat with your documents from the terminal",
	Long: `omniq is a terminal client for a retrieval-augmented chat backend.

Ask questions grounded in your uploaded documents, follow citations to the
source pages, and manage the document set.

Configuration is read from ~/.omniq/config.toml, then OMNIQ_* environment
variables, then flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: runRootPreRun,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&options.ConfigDir, "config-dir", "", "configuration directory (default ~/.omniq)")
	flags.StringVar(&options.BaseURL, "base-url", "", "backend base URL")
	flags.StringVar(&options.LogFile, "log-file", "", "write JSON logs to this file")
}

// SetBootstrap registers how services are built from the global flags.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing bootstrap.
func SetServices(s *Services) {
	services = s
	if s == nil {
		s = &Services{}
	}
	chatSession = s.Chat
	documentCoord = s.Documents
	authService = s.Auth
	settingsService = s.Settings
	imageService = s.Images
	uploadScheduler = s.Scheduler
	fileSource = s.Files
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runRootPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(options.Verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if bootstrap == nil || services != nil {
		return nil
	}
	options.Interactive = cmd == tuiCmd
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := bootstrap(ctx, options)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	SetServices(s)
	return nil
}

// Shutdown releases the services built for the command.
func Shutdown() {
	if services != nil && services.Close != nil {
		services.Close()
	}
}

// commandContext returns the command's context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// errNotConfigured names a missing collaborator.
func errNotConfigured(what string) error {
	return errors.New(what + " not configured")
}
