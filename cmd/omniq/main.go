// Command omniq is a terminal client for a retrieval-augmented chat backend.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/backend"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/notify"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/viewer"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/watch"
	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniq-cli/internal/core/services"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(ctx)
	cli.Shutdown()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the services for one command run.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	environment, err := file.LoadEnvironment()
	if err != nil {
		return nil, err
	}

	configDir := opts.ConfigDir
	if configDir == "" {
		configDir = environment.ConfigDir
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	settingsService := services.NewSettingsService(store)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	environment.Apply(settings)
	if opts.BaseURL != "" {
		settings.Backend.BaseURL = opts.BaseURL
	}
	if opts.LogFile != "" {
		settings.LogFile = opts.LogFile
	}
	if err := logger.SetFile(settings.LogFile); err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	client, err := backend.NewClient(backend.ConfigFromSettings(settings.Backend))
	if err != nil {
		return nil, err
	}
	logger.Debug("backend %s", client.BaseURL())

	var (
		notifier driven.Notifier
		recorder *notify.Recorder
	)
	if opts.Interactive {
		recorder = notify.NewRecorder()
		notifier = recorder
	} else {
		notifier = notify.NewConsole(os.Stderr, useColor())
	}

	documents := services.NewDocumentCoordinator(
		ctx,
		client,
		notifier,
		viewer.NewBrowser(contentBase(client.BaseURL())),
		settings.Upload.Ceiling(),
	)

	watcher, err := watch.NewWatcher(settings.Upload.Patterns)
	if err != nil {
		return nil, fmt.Errorf("upload patterns: %w", err)
	}
	files := watch.Files{}

	chat := settings.Chat
	newSession := func() driving.ChatSession {
		return services.NewConversationSession(client, chat)
	}
	closeAll := func() {
		documents.Close()
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	}

	s := &cli.Services{
		Chat:       newSession(),
		Documents:  documents,
		Auth:       services.NewAuthService(client, client, auth.NewJWTInspector()),
		Settings:   settingsService,
		Images:     services.NewImageService(client),
		Scheduler:  services.NewUploadScheduler(domain.DefaultSyncConfig(), watcher, files, documents),
		Files:      files,
		NewSession: newSession,
		Sessions:   memory.NewSessionRegistry[driving.ChatSession](memory.DefaultSessionIdle, memory.DefaultSessionCleanup),
		BaseURL:    client.BaseURL(),
		Close:      closeAll,
	}
	if recorder != nil {
		s.Notices = recorder
	}
	return s, nil
}

// contentBase is where documents without a base URL of their own are served.
func contentBase(baseURL string) string {
	u, err := url.JoinPath(baseURL, "content")
	if err != nil {
		return baseURL
	}
	return u
}

func useColor() bool {
	return !color.NoColor && term.IsTerminal(int(os.Stderr.Fd()))
}
