package session

import (
	"context"
	"fmt"
	"strings"
)

type command struct {
	name    string
	usage   string
	help    string
	states  []State // Empty means every non-terminal state
	minArgs int
	run     func(c *Controller, ctx context.Context, args []string) error
}

func (cmd command) validIn(s State) bool {
	if len(cmd.states) == 0 {
		return s != Terminated
	}
	for _, ok := range cmd.states {
		if ok == s {
			return true
		}
	}
	return false
}

var commands []command

func init() {
	idle := []State{Uninitialized}
	active := []State{Active}

	commands = []command{
		{name: "EXIT", usage: "EXIT", help: "End the session", run: (*Controller).exit},
		{name: "HELP", usage: "HELP", help: "List the commands available now", run: (*Controller).help},
		{name: "SEARCH", usage: "SEARCH <term...>", help: "Search PubMed and show matching articles", minArgs: 1, run: (*Controller).search},

		{name: "NEW", usage: "NEW <name>", help: "Create and load an empty corpus", states: idle, minArgs: 1, run: (*Controller).create},
		{name: "LOAD", usage: "LOAD <name>", help: "Load a saved corpus", states: idle, minArgs: 1, run: (*Controller).load},
		{name: "LIST", usage: "LIST", help: "List saved corpora", states: idle, run: (*Controller).list},
		{name: "REMOVE", usage: "REMOVE <name> [kind...]", help: "Delete a corpus and its exports, or only the given kinds", states: idle, minArgs: 1, run: (*Controller).remove},

		{name: "UNLOAD", usage: "UNLOAD", help: "Close the corpus", states: active, run: (*Controller).unload},
		{name: "PEEK", usage: "PEEK", help: "Show the corpus size and identifiers", states: active, run: (*Controller).peek},
		{name: "ADD", usage: "ADD <id...>", help: "Fetch articles by PubMed ID and add them", states: active, minArgs: 1, run: (*Controller).add},
		{name: "ADDPDF", usage: "ADDPDF <path>", help: "Add the article a PDF file identifies", states: active, minArgs: 1, run: (*Controller).addPDF},
		{name: "GROW", usage: "GROW [cycles]", help: "Fetch the most linked unfetched articles, cycles times", states: active, run: (*Controller).grow},
		{name: "GRAPH", usage: "GRAPH [dot|cyjs|html [layout]]", help: "Write the citation graph", states: active, run: (*Controller).graph},
		{name: "RENDER", usage: "RENDER <png|svg|pdf> [dpi]", help: "Write the graph and render it with Graphviz", states: active, minArgs: 1, run: (*Controller).render},
		{name: "EXPORT-TABLE", usage: "EXPORT-TABLE [csv|bib|sqlite]", help: "Export the corpus as a table", states: active, run: (*Controller).exportTable},
		{name: "EXPORT-REPORT", usage: "EXPORT-REPORT <words|diwords|triwords|n> [steps]", help: "Write n-gram counts of the abstracts and print a random walk", states: active, minArgs: 1, run: (*Controller).exportReport},
	}
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (c *Controller) exit(ctx context.Context, args []string) error {
	err := c.Autosave()
	c.state = Terminated
	return err
}

func (c *Controller) help(ctx context.Context, args []string) error {
	width := 0
	for _, cmd := range commands {
		if cmd.validIn(c.state) {
			width = max(width, len(cmd.usage))
		}
	}

	c.out.Title("Commands (%s):", c.state)
	for _, cmd := range commands {
		if cmd.validIn(c.state) {
			c.out.Println("%-*s  %s", width, cmd.usage, cmd.help)
		}
	}
	return nil
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// hang prefixes text with label and aligns continuation lines under the text.
func hang(label, text string) string {
	return label + strings.ReplaceAll(text, "\n", "\n"+strings.Repeat(" ", len(label)))
}
