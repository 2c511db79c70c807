package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/triage/internal/core/domain"
)

var (
	retrieveK    int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the corpus passages closest to a query",
	Long: `Embeds the query and prints the nearest passages from the stored index,
closest first. Useful for checking what grounds the dialogue.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "k", "k", domain.DefaultTopK, "number of passages to return")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if err := ensureRetrieval(cmd.Context()); err != nil {
		return err
	}
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	query := strings.Join(args, " ")
	passages, err := retrievalService.Retrieve(cmd.Context(), query, retrieveK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return outputPassagesJSON(cmd, passages)
	}
	return outputPassages(cmd, passages)
}

type passageJSON struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

func outputPassagesJSON(cmd *cobra.Command, passages []domain.Passage) error {
	out := make([]passageJSON, len(passages))
	for i, p := range passages {
		out[i] = passageJSON{Position: p.Position, Text: p.Text}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal passages: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputPassages(cmd *cobra.Command, passages []domain.Passage) error {
	if len(passages) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	for i, p := range passages {
		cmd.Printf("  [%d] passage %d\n", i+1, p.Position)
		for _, line := range strings.Split(strings.TrimSpace(p.Text), "\n") {
			cmd.Printf("      %s\n", line)
		}
		cmd.Println()
	}
	return nil
}
