package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/citegraph/gref/internal/session"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func runShell(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	c := a.controller(os.Stdout, interactive)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	if interactive {
		fmt.Printf("gref %s: type HELP for commands, EXIT or Ctrl-C to quit\n", Version)
	}
	return c.Run(cmd.Context(), session.NewLineReader(os.Stdin), interrupts)
}
