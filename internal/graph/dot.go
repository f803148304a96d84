package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const dotHeader = `digraph {

pad=0.7
layout=dot
rankdir=BT
ranksep=0.5
nodesep=0.0
splines=true
outputorder=edgesfirst

node [shape=note style=filled fontsize=9 fillcolor=none target="_blank" ordering="in"]
edge [arrowhead=none]

`

// WriteDOT writes g as a Graphviz description, nodes first, then edges.
func WriteDOT(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(dotHeader)
	for _, n := range g.Nodes {
		fmt.Fprintf(bw, "    %s [label=%s href=%s tooltip=%s fillcolor=%s margin=%s]\n",
			quote(n.ID), quote(n.Label), quote(n.Href), quote(n.Tooltip), quote(n.Color),
			strconv.FormatFloat(n.Size, 'f', -1, 64))
	}
	bw.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(bw, "    %s:n->%s:s [penwidth=%.6f]\n", quote(e.From), quote(e.To), e.Weight)
	}
	bw.WriteString("\n}\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing graph description: %w", err)
	}
	return nil
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
