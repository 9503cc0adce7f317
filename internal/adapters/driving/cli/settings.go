package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the backend address, chat approach, retrieval
overrides and upload options.

Use subcommands to change a single key or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by key. Omitting the value clears optional
settings such as chat.top or chat.prompt_template.

Run 'omniq settings keys' to list the keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	RunE:  runSettingsReset,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the backend and chat settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backend]")
	cmd.Printf("  Base URL: %s\n", settings.Backend.BaseURL)
	if settings.Backend.TimeoutSeconds > 0 {
		cmd.Printf("  Timeout: %ds\n", settings.Backend.TimeoutSeconds)
	} else {
		cmd.Println("  Timeout: none")
	}
	if settings.Backend.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", settings.Backend.RequestsPerSecond)
	} else {
		cmd.Println("  Rate limit: none")
	}
	if settings.Backend.Token != "" {
		cmd.Printf("  Token: %s\n", maskAPIKey(settings.Backend.Token))
	} else {
		cmd.Println("  Token: (not set)")
	}
	cmd.Println()

	o := settings.Chat.Overrides
	cmd.Println("[Chat]")
	cmd.Printf("  Approach: %s\n", settings.Chat.Approach.Description())
	cmd.Printf("  Retrieval mode: %s\n", o.RetrievalMode)
	cmd.Printf("  Semantic ranker: %s\n", yesNo(o.SemanticRanker))
	if o.SemanticCaptions != nil {
		cmd.Printf("  Semantic captions: %s\n", yesNo(*o.SemanticCaptions))
	}
	if o.Top != nil {
		cmd.Printf("  Top: %d\n", *o.Top)
	}
	if o.Temperature != nil {
		cmd.Printf("  Temperature: %d\n", *o.Temperature)
	}
	if o.ExcludeCategory != nil {
		cmd.Printf("  Exclude category: %s\n", *o.ExcludeCategory)
	}
	if o.PromptTemplate != nil {
		cmd.Println("  Prompt template: (custom)")
	}
	cmd.Printf("  Follow-up questions: %s\n", yesNo(o.SuggestFollowupQuestions))
	cmd.Println()

	cmd.Println("[Upload]")
	cmd.Printf("  Max file size: %d bytes\n", settings.Upload.Ceiling())
	cmd.Printf("  Patterns: %s\n", strings.Join(settings.Upload.Patterns, ", "))
	cmd.Println()

	if settings.LogFile != "" {
		cmd.Println("[Log]")
		cmd.Printf("  File: %s\n", settings.LogFile)
		cmd.Println()
	}

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'omniq settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}

	value := ""
	if len(args) == 2 {
		value = args[1]
	}
	if err := settingsService.Set(args[0], value); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	if value == "" {
		cmd.Printf("Cleared %s\n", args[0])
	} else {
		cmd.Printf("Set %s = %s\n", args[0], value)
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	cmd.Println("Settings restored to defaults.")
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("OmniQ Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Backend
	cmd.Println("Step 1: Backend")
	cmd.Println("---------------")
	cmd.Printf("Enter base URL [%s]: ", settings.Backend.BaseURL)
	if input := readLine(reader); input != "" {
		settings.Backend.BaseURL = input
	}
	cmd.Println()

	// Step 2: Approach
	cmd.Println("Step 2: Select Approach")
	cmd.Println("-----------------------")
	approaches := []domain.Approach{
		domain.ApproachRetrieveThenRead,
		domain.ApproachReadRetrieveRead,
		domain.ApproachReadDecomposeAsk,
	}
	current := 1
	for i, a := range approaches {
		if a == settings.Chat.Approach {
			current = i + 1
		}
		cmd.Printf("  %d. %s\n", i+1, a.Description())
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Chat.Approach = approaches[parseChoice(readLine(reader), len(approaches), current)-1]
	cmd.Println()

	// Step 3: Retrieval mode
	cmd.Println("Step 3: Select Retrieval Mode")
	cmd.Println("-----------------------------")
	modes := []domain.RetrievalMode{
		domain.RetrievalModeText,
		domain.RetrievalModeVector,
		domain.RetrievalModeHybrid,
	}
	current = 1
	for i, m := range modes {
		if m == settings.Chat.Overrides.RetrievalMode {
			current = i + 1
		}
		cmd.Printf("  %d. %s\n", i+1, m)
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Chat.Overrides.RetrievalMode = modes[parseChoice(readLine(reader), len(modes), current)-1]
	cmd.Println()

	// Step 4: Follow-ups
	cmd.Printf("Suggest follow-up questions? (y/n) [%s]: ", yesNo(settings.Chat.Overrides.SuggestFollowupQuestions)[:1])
	switch strings.ToLower(readLine(reader)) {
	case "y", "yes":
		settings.Chat.Overrides.SuggestFollowupQuestions = true
	case "n", "no":
		settings.Chat.Overrides.SuggestFollowupQuestions = false
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Printf("Approach: %s, retrieval: %s\n", settings.Chat.Approach.Description(), settings.Chat.Overrides.RetrievalMode)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when the command reads a terminal.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
