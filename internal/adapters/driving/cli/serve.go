package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/triage/internal/adapters/driving/httpapi"
)

var (
	serveAddr         string
	serveEnableIngest bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the triage engine over HTTP",
	Long: `Starts the HTTP API used by patient-facing front ends:

  GET  /               liveness message
  POST /start_session  create a session and return its id
  POST /chat           answer one patient turn
  POST /summary        summarise a session and archive the report

With --enable-ingest the server also exposes POST /ingest, which rebuilds
the index from server.corpus_dir. The running server keeps answering from
the index it loaded at start.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&serveEnableIngest, "enable-ingest", false, "expose POST /ingest")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureEngine(cmd.Context()); err != nil {
		return err
	}
	if dialogueService == nil || summaryService == nil {
		return errors.New("triage engine not configured")
	}

	ports := &httpapi.Ports{
		Dialogue: dialogueService,
		Summary:  summaryService,
	}

	addr := serveAddr
	if addr == "" || serveEnableIngest {
		settings, err := currentSettings()
		if err != nil {
			return err
		}
		if addr == "" {
			addr = settings.Server.Addr
		}
		if serveEnableIngest {
			if err := ensureIngest(); err != nil {
				return err
			}
			ports.Ingest = ingestService
			ports.CorpusDir = settings.Server.CorpusDir
		}
	}

	server, err := httpapi.NewServer(ports)
	if err != nil {
		return err
	}

	cmd.Printf("Triage API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}
