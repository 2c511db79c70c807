// Package cli implements the triage command line with cobra.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/core/ports/driving"
	"github.com/custodia-labs/triage/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	verbose bool
	homeDir string
)

// Services used by the commands. They are built on first use from the
// settings in the triage home; tests replace them with mocks.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	dialogueService  driving.DialogueService
	summaryService   driving.SummaryService
	reportArchive    driven.ReportArchive
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Retrieval-augmented clinical triage assistant",
	Long: `triage asks patients one grounded follow-up question per turn and
summarises the conversation for a physician.

Build the passage index with 'triage ingest', then talk to the engine with
'triage chat', serve it with 'triage serve' or expose it to AI assistants
with 'triage mcp serve'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "triage home directory (default ~/.triage)")
}

// Execute runs the root command and releases any services it opened.
// SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeAll()

	return rootCmd.ExecuteContext(ctx)
}
