package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/render"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

var (
	askShowSources bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Sends a single question to the backend and prints the answer.

Citations in the answer are numbered and listed below it with the link
that opens the cited page. Follow-up questions suggested by the backend
are listed last.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askShowSources, "show-sources", "s", false, "print supporting content and thoughts")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the raw response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatSession == nil {
		return errNotConfigured("chat session")
	}

	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		cmd.PrintErrln("Nothing to ask. Usage: " + cmd.UseLine())
		return nil
	}
	exchange, err := chatSession.Submit(commandContext(cmd), question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	if exchange == nil {
		return nil
	}

	if askJSON {
		data, err := json.MarshalIndent(exchange.Answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		if exchange.Answer.IsError() {
			return errors.New(*exchange.Answer.Error)
		}
		return nil
	}

	_, err = printAnswer(cmd, exchange.Answer, askShowSources)
	return err
}

// printAnswer writes a rendered answer with its citations and follow-ups.
// Failed answers are written to stderr and returned as an error.
func printAnswer(cmd *cobra.Command, resp *domain.ApproachResponse, showSources bool) (domain.ParsedAnswer, error) {
	if resp == nil {
		return domain.ParsedAnswer{}, errors.New(domain.ChatFailureMessage)
	}
	if resp.IsError() {
		cmd.PrintErrln(resp.Answer)
		return domain.ParsedAnswer{}, errors.New(*resp.Error)
	}

	parsed := domain.ParseAnswer(resp.Answer, resp.CitationBaseURL, resp.DataPoints)
	body, err := render.Answer(parsed)
	if err != nil {
		// Fall back to the unrendered text.
		body = parsed.PlainText()
	}
	cmd.Println(body)

	if citations := render.Citations(parsed); citations != "" {
		cmd.Println()
		cmd.Println("Citations:")
		cmd.Print(citations)
	}
	if followups := render.Followups(parsed); followups != "" {
		cmd.Println()
		cmd.Println("Follow-up questions:")
		cmd.Print(followups)
	}
	if showSources {
		if sources := render.Sources(resp, 120); sources != "" {
			cmd.Println()
			cmd.Println("Sources:")
			cmd.Print(sources)
		}
	}
	return parsed, nil
}
