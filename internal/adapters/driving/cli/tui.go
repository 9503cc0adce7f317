package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for omniq.

Chat with your documents, follow citations, browse and upload documents,
and edit settings with the keyboard.

Controls:
  Enter    - Ask / Select
  Tab      - Browse citations of the last answer
  1-9      - Open a citation while browsing
  f        - Use the next follow-up question
  s        - Show or hide supporting content
  Ctrl+L   - Clear the conversation
  Esc      - Back / Cancel
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// newTUIPorts collects the installed services for the TUI.
func newTUIPorts() *tui.Ports {
	ports := tui.NewPorts(chatSession, documentCoord)
	ports.Settings = settingsService
	ports.Files = fileSource
	if services != nil {
		ports.Notices = services.Notices
	}
	return ports
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(newTUIPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(commandContext(cmd)))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
