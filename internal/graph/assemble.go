package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/similarity"
)

// Edges derives the citation edges of corpus in one pass, sorted by (From, To).
//
// For a document k, each reference r in the corpus gives (r, k) and each citing
// document c in the corpus gives (k, c). Self-loops, identifiers outside the
// corpus and related links are ignored.
func Edges(corpus document.Corpus) []Edge {
	type pair struct{ from, to string }
	seen := make(map[pair]bool)

	for k, d := range corpus {
		for _, r := range d.References {
			if r != k && corpus.Has(r) {
				seen[pair{r, k}] = true
			}
		}
		for _, c := range d.CitedIn {
			if c != k && corpus.Has(c) {
				seen[pair{k, c}] = true
			}
		}
	}

	edges := make([]Edge, 0, len(seen))
	for p := range seen {
		edges = append(edges, Edge{From: p.from, To: p.to})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Assemble builds the graph view of corpus. Documents without edges are left out.
func Assemble(corpus document.Corpus, opts Options) *Graph {
	edges := Edges(corpus)

	inbound := make(map[string]int)
	outbound := make(map[string]int)
	for i, e := range edges {
		outbound[e.From]++
		inbound[e.To]++
		score := similarity.Score(corpus[e.From].Abstract, corpus[e.To].Abstract, opts.Similarity)
		edges[i].Weight = MaxPenWidth * math.Pow(score, 6)
	}

	ids := make([]string, 0, len(inbound)+len(outbound))
	for id := range outbound {
		ids = append(ids, id)
	}
	for id := range inbound {
		if outbound[id] == 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, newNode(corpus[id], inbound[id], outbound[id]))
	}

	return &Graph{Nodes: nodes, Edges: edges}
}

func newNode(d document.Document, in, out int) Node {
	return Node{
		ID:       d.ID,
		Label:    Label(d),
		Href:     HrefPrefix + d.ID + "/",
		Tooltip:  Tooltip(d),
		Color:    NodeColor(in, out),
		Size:     NodeSize(len(d.CitedIn)),
		Inbound:  in,
		Outbound: out,
	}
}

// NodeColor interpolates each channel from the all-outbound color to the
// all-inbound color at in/(in+out) and truncates to integers.
func NodeColor(in, out int) string {
	frac := 0.0
	if in+out > 0 {
		frac = float64(in) / float64(in+out)
	}
	var rgb [3]int
	for i := range rgb {
		rgb[i] = int(outboundColor[i] + (inboundColor[i]-outboundColor[i])*frac)
	}
	return fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2])
}

// NodeSize grows with the logarithm of the raw citedIn count.
func NodeSize(citedIn int) float64 {
	return 0.05 + math.Log10(1+float64(citedIn))/10
}
