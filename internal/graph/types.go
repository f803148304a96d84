// Package graph assembles a corpus into a weighted, colored citation graph
// and writes it as a Graphviz description or Cytoscape.js elements.
package graph

import "github.com/citegraph/gref/internal/similarity"

// Edge is a directed citation edge. From is cited by To.
type Edge struct {
	From   string  `json:"source"`
	To     string  `json:"target"`
	Weight float64 `json:"weight"` // Pen width derived from abstract similarity
}

// Node is a document that touches at least one edge.
type Node struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Href     string  `json:"href"`
	Tooltip  string  `json:"tooltip"`
	Color    string  `json:"color"` // #RRGGBB
	Size     float64 `json:"size"`
	Inbound  int     `json:"inbound"`
	Outbound int     `json:"outbound"`
}

// Graph is the assembled view of a corpus.
type Graph struct {
	Nodes []Node `json:"nodes"` // Sorted by ID
	Edges []Edge `json:"edges"` // Sorted by (From, To)
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Options control derived node and edge attributes.
type Options struct {
	Similarity similarity.Mode
}

const (
	// HrefPrefix is prefixed to a document ID to form its node link.
	HrefPrefix = "https://pubmed.ncbi.nlm.nih.gov/"

	// LabelWidth is the wrap column for node labels.
	LabelWidth = 20

	// MaxPenWidth scales edge similarity into pen width.
	MaxPenWidth = 50.0
)

var (
	outboundColor = [3]float64{255, 220, 140}
	inboundColor  = [3]float64{150, 230, 255}
)
