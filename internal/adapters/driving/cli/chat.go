package cli

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/render"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts a conversation that keeps the full history, so each question
is answered in the context of the previous ones.

Commands:
  /clear      - Start over
  /sources    - Show supporting content of the last answer
  /open N     - Open citation N in the browser
  /quit       - Leave
  N           - Ask follow-up question N`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatSession == nil {
		return errNotConfigured("chat session")
	}

	ctx := commandContext(cmd)
	in := bufio.NewScanner(cmd.InOrStdin())

	var (
		last     domain.ParsedAnswer
		lastResp *domain.ApproachResponse
	)

	cmd.Println("Ask a question. Type /quit to leave.")
	for {
		cmd.Print("> ")
		if !in.Scan() {
			cmd.Println()
			break
		}
		line := strings.TrimSpace(in.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/clear":
			chatSession.Clear()
			last, lastResp = domain.ParsedAnswer{}, nil
			cmd.Println("Conversation cleared.")
			continue
		case line == "/sources":
			if sources := render.Sources(lastResp, 120); sources != "" {
				cmd.Print(sources)
			} else {
				cmd.Println("No sources.")
			}
			continue
		case strings.HasPrefix(line, "/open"):
			openCitation(cmd, last, strings.TrimSpace(strings.TrimPrefix(line, "/open")))
			continue
		case strings.HasPrefix(line, "/"):
			cmd.PrintErrf("Unknown command: %s\n", line)
			continue
		}

		question := line
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(last.FollowupQuestions) {
			question = last.FollowupQuestions[n-1]
			cmd.Printf("> %s\n", question)
		}

		chatSession.SetInput(question)
		exchange, err := chatSession.Submit(ctx, question)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		if exchange == nil {
			continue
		}

		cmd.Println()
		parsed, err := printAnswer(cmd, exchange.Answer, false)
		cmd.Println()
		if err != nil {
			continue
		}
		last, lastResp = parsed, exchange.Answer
	}
	return in.Err()
}

func openCitation(cmd *cobra.Command, parsed domain.ParsedAnswer, arg string) {
	if documentCoord == nil {
		cmd.PrintErrln("Error: document viewer not configured")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		cmd.PrintErrln("Usage: /open N")
		return
	}
	citation, ok := parsed.Citation(n)
	if !ok {
		cmd.PrintErrf("No citation %d\n", n)
		return
	}
	if err := documentCoord.OpenCitation(commandContext(cmd), citation); err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}
	cmd.Printf("Opened %s\n", citation.URL())
}
