// Command triage is the clinical triage assistant CLI and server.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/triage/internal/adapters/driving/cli"
)

func main() {
	// Load .env if present so provider API keys can live next to the corpus.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
