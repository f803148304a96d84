package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/citegraph/gref/internal/session"
	"github.com/spf13/cobra"
)

var runCreate bool

func init() {
	runCmd.Flags().BoolVar(&runCreate, "create", false, "Create the corpus if it does not exist")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <name> <command>...",
	Short: "Run session commands against a corpus non-interactively",
	Long: `Load a corpus, run each argument as one session command, save and exit.

Execution stops at the first failing command. The corpus is saved either way.

Examples:
  gref run --create tb "ADD 31208245 29447242" "GROW 3" "RENDER svg"
  gref run tb GRAPH "EXPORT-TABLE csv" "EXPORT-REPORT diwords 50"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCommands,
}

func runCommands(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	name := args[0]
	c := a.controller(os.Stdout, false)
	open := "LOAD " + name
	if runCreate && !a.store.Exists(name) {
		open = "NEW " + name
	}
	if err := c.Execute(ctx, open); err != nil {
		return err
	}

	runErr := execAll(ctx, c, args[1:])
	if err := c.Autosave(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// execAll runs lines in order and stops at the first error.
func execAll(ctx context.Context, c *session.Controller, lines []string) error {
	for _, line := range lines {
		if err := c.Execute(ctx, line); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%s: %w", line, session.ErrInterrupted)
			}
			return fmt.Errorf("%s: %w", line, err)
		}
		if c.State() == session.Terminated {
			break
		}
	}
	return nil
}
