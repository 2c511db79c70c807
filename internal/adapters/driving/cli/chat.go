package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/triage/internal/core/domain"
)

var (
	chatLang    string
	chatSession string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the triage engine in the terminal",
	Long: `Starts an interactive triage conversation. Each line you type is one
patient turn; the engine answers with a single follow-up question.

Commands inside the conversation:
  /summary [name]   summarise the session and archive the report
  /transcript       print the conversation so far
  exit, quit, q     leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatLang, "lang", "l", "en", "patient language code")
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "resume or name a session (default: new session)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := ensureEngine(cmd.Context()); err != nil {
		return err
	}
	if dialogueService == nil || summaryService == nil {
		return errors.New("triage engine not configured")
	}

	ctx := cmd.Context()
	sessionID := chatSession
	if sessionID == "" {
		id, err := dialogueService.StartSession(ctx)
		if err != nil {
			return err
		}
		sessionID = id
	}

	cmd.Printf("Session %s (type 'exit' to leave, '/summary' to finish)\n", sessionID)

	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		if ctx.Err() != nil {
			return nil
		}
		cmd.Print("> ")
		line, readErr := reader.ReadString('\n')
		input := strings.TrimSpace(line)

		switch {
		case input == "":
		case isExitWord(input):
			return nil
		case input == "/transcript":
			transcript, err := summaryService.Transcript(ctx, sessionID)
			if err != nil {
				cmd.PrintErrf("Error: %v\n", err)
				break
			}
			cmd.Println(transcript)
		case input == "/summary" || strings.HasPrefix(input, "/summary "):
			name := strings.TrimSpace(strings.TrimPrefix(input, "/summary"))
			if name == "" {
				name = domain.DefaultDisplayName
			}
			report, err := summaryService.Report(ctx, sessionID, name)
			if err != nil {
				cmd.PrintErrf("Error: %v\n", err)
				break
			}
			cmd.Println(report.Text)
			cmd.Printf("\nReport saved to %s\n", report.Location)
		default:
			reply, err := dialogueService.Ask(ctx, sessionID, input, chatLang)
			if err != nil {
				cmd.PrintErrf("Error: %v\n", err)
				break
			}
			cmd.Println(reply)
		}

		if readErr != nil {
			// EOF ends the conversation.
			cmd.Println()
			return nil
		}
	}
}

func isExitWord(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "q":
		return true
	}
	return false
}
