package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/triage/internal/adapters/driven/corpus"
	"github.com/custodia-labs/triage/internal/core/domain"
)

var (
	ingestCorpus string
	ingestWatch  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the passage index from the corpus folder",
	Long: `Reads every .txt file in the corpus folder in name order, splits the text
into overlapping passages, embeds them and replaces the stored index.

With --watch the command keeps running and re-ingests whenever a .txt file
in the folder is created, changed or removed.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCorpus, "corpus", "c", "", "corpus folder (default server.corpus_dir)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when the corpus changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := ensureIngest(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir, err := corpusDir(ingestCorpus)
	if err != nil {
		return err
	}

	ingestOnce := func(ctx context.Context) error {
		result, err := ingestService.Ingest(ctx, dir)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		printIngestResult(cmd, result)
		return nil
	}

	if err := ingestOnce(cmd.Context()); err != nil {
		return err
	}
	if !ingestWatch {
		return nil
	}

	watcher := corpus.NewWatcher(dir, corpus.DefaultDebounce)
	defer watcher.Close()

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
	err = watcher.Run(cmd.Context(), ingestOnce)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// corpusDir returns flagValue, falling back to the configured corpus folder.
func corpusDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	settings, err := currentSettings()
	if err != nil {
		return "", err
	}
	return settings.Server.CorpusDir, nil
}

func printIngestResult(cmd *cobra.Command, result *domain.IngestResult) {
	cmd.Printf("Ingested %d passages from %d files (model %s, dimension %d) in %s\n",
		result.Passages, result.Files, result.EmbeddingModel, result.Dimension,
		result.Duration.Round(time.Millisecond))
	if result.Skipped > 0 {
		cmd.Printf("Skipped %d unreadable files (run with --verbose for details)\n", result.Skipped)
	}
}
