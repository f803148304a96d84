package main

import (
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Search PubMed and print matching articles",
	Long: `Search PubMed with an Entrez query and print identifier, title and
authors of each hit.

Examples:
  gref search tuberculosis transmission
  gref search "10.1038/nature12373[doi]"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return a.controller(os.Stdout, false).Execute(ctx, "SEARCH "+strings.Join(args, " "))
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved corpora",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		return a.controller(os.Stdout, false).Execute(cmd.Context(), "LIST")
	},
}
