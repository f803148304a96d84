// Package main provides the gref CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath string
	dataDir    string
	debug      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so errors are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "gref",
	Short: "Crawl and chart PubMed citation graphs",
	Long: `gref grows a corpus of PubMed articles by following citations and
turns it into a weighted citation graph.

Without a subcommand gref starts an interactive session. Type HELP at the
prompt for the commands available in the current state. The corpus is saved
before every prompt.

Corpora and exports are stored under the data directory, one subdirectory
per artifact kind (json, gv, png, csv, ...).`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

func init() {
	// Load .env file if present (for NCBI_API_KEY and NCBI_EMAIL)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/gref/config.yml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config and GREF_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log requests and state changes to stderr")
	rootCmd.Version = Version
}
