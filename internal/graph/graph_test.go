package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/similarity"
)

func doc(id string, refs, citedIn []string) document.Document {
	if refs == nil {
		refs = []string{}
	}
	if citedIn == nil {
		citedIn = []string{}
	}
	return document.Document{ID: id, References: refs, CitedIn: citedIn, Related: []string{}}
}

func TestEdges_TwoDocumentScenario(t *testing.T) {
	corpus := document.Corpus{}
	corpus.Put(doc("1", nil, []string{"2"}))
	corpus.Put(doc("2", []string{"1"}, nil))

	edges := Edges(corpus)
	if len(edges) != 1 || edges[0].From != "1" || edges[0].To != "2" {
		t.Fatalf("Edges() = %v, want [(1,2)]", edges)
	}

	g := Assemble(corpus, Options{})
	if len(g.Nodes) != 2 || g.Nodes[0].ID != "1" || g.Nodes[1].ID != "2" {
		t.Errorf("nodes = %v, want [1 2]", g.Nodes)
	}
}

func TestEdges_ExcludesSelfLoopsAndOutsiders(t *testing.T) {
	corpus := document.Corpus{}
	corpus.Put(doc("1", []string{"1", "9"}, []string{"1", "8", "3"}))
	corpus.Put(doc("2", []string{"1"}, nil))
	corpus.Put(doc("3", nil, nil))
	d := doc("4", nil, nil)
	d.Related = []string{"1", "2"}
	corpus.Put(d)

	edges := Edges(corpus)
	for _, e := range edges {
		if e.From == e.To {
			t.Errorf("self-loop %v", e)
		}
		if !corpus.Has(e.From) || !corpus.Has(e.To) {
			t.Errorf("edge %v leaves the corpus", e)
		}
	}

	want := []Edge{{From: "1", To: "2"}, {From: "1", To: "3"}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("Edges() = %v, want %v", edges, want)
	}

	g := Assemble(corpus, Options{})
	for _, n := range g.Nodes {
		if n.ID == "4" {
			t.Error("document with only related links should have no node")
		}
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	corpus := document.Corpus{}
	corpus.Put(doc("a", []string{"b", "c"}, []string{"d"}))
	corpus.Put(doc("b", []string{"c"}, []string{"a"}))
	corpus.Put(doc("c", nil, []string{"a", "b"}))
	corpus.Put(doc("d", []string{"a"}, nil))

	first := Assemble(corpus, Options{})
	second := Assemble(corpus, Options{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Assemble() not idempotent:\n%v\n%v", first, second)
	}
}

func TestAssemble_NodeMetrics(t *testing.T) {
	corpus := document.Corpus{}
	corpus.Put(doc("1", nil, []string{"2", "3"}))
	corpus.Put(doc("2", []string{"1"}, []string{"3"}))
	corpus.Put(doc("3", []string{"1", "2"}, nil))

	g := Assemble(corpus, Options{})
	byID := map[string]Node{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	tests := []struct {
		id        string
		in, out   int
		wantColor string
	}{
		{"1", 0, 2, "#FFDC8C"},
		{"2", 1, 1, "#CAE1C5"},
		{"3", 2, 0, "#96E6FF"},
	}
	for _, tt := range tests {
		n := byID[tt.id]
		if n.Inbound != tt.in || n.Outbound != tt.out {
			t.Errorf("node %s in/out = %d/%d, want %d/%d", tt.id, n.Inbound, n.Outbound, tt.in, tt.out)
		}
		if n.Color != tt.wantColor {
			t.Errorf("node %s color = %s, want %s", tt.id, n.Color, tt.wantColor)
		}
		if n.Href != "https://pubmed.ncbi.nlm.nih.gov/"+tt.id+"/" {
			t.Errorf("node %s href = %s", tt.id, n.Href)
		}
	}
}

func TestNodeSize(t *testing.T) {
	tests := []struct {
		citedIn int
		want    float64
	}{
		{0, 0.05},
		{9, 0.15},
		{99, 0.25},
	}
	for _, tt := range tests {
		if got := NodeSize(tt.citedIn); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NodeSize(%d) = %v, want %v", tt.citedIn, got, tt.want)
		}
	}
}

func TestAssemble_EdgeWeight(t *testing.T) {
	corpus := document.Corpus{}
	a := doc("1", nil, []string{"2"})
	a.Abstract = "protein folding dynamics"
	b := doc("2", nil, nil)
	b.Abstract = "Protein folding dynamics"
	corpus.Put(a)
	corpus.Put(b)

	g := Assemble(corpus, Options{Similarity: similarity.Weighted})
	if got := g.Edges[0].Weight; math.Abs(got-MaxPenWidth) > 1e-9 {
		t.Errorf("weight for identical abstracts = %v, want %v", got, MaxPenWidth)
	}

	b.Abstract = "unrelated text"
	corpus.Put(b)
	g = Assemble(corpus, Options{})
	if got := g.Edges[0].Weight; got != 0 {
		t.Errorf("weight for disjoint abstracts = %v, want 0", got)
	}
}

func TestLabel(t *testing.T) {
	authors := func(names ...string) []document.Author {
		out := make([]document.Author, len(names))
		for i, n := range names {
			out[i] = document.Author{Name: n + ", A"}
		}
		return out
	}

	tests := []struct {
		name    string
		authors []document.Author
		want    string
	}{
		{"one author", authors("Smith"), "Smith (2019)"},
		{"two authors", authors("Smith", "Jones"), "Smith & Jones\n(2019)"},
		{"three authors", authors("Smith", "Jones", "Lee"), "Smith, Jones, & Lee\n(2019)"},
		{"many authors", authors("Smith", "Jones", "Lee", "Kim"), "Smith, et al.\n(2019)"},
		{"no authors", nil, "(2019)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := document.Document{ID: "1", Authors: tt.authors, Date: "2019 Mar 4"}
			if got := Label(d); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTooltip_ReplacesDoubleQuotes(t *testing.T) {
	d := document.Document{ID: "7", Title: `The "best" title`, Abstract: `a "quoted" word`, Journal: "J"}
	got := Tooltip(d)
	if strings.Contains(got, `"`) {
		t.Errorf("Tooltip() contains double quotes: %q", got)
	}
	if !strings.HasPrefix(got, "Title: The 'best' title\n~\nBy: ") {
		t.Errorf("Tooltip() = %q", got)
	}
	if !strings.HasSuffix(got, "PMID: 7\nJournal: J") {
		t.Errorf("Tooltip() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"single", 3, "single"},
		{"alpha-beta gamma", 12, "alpha-beta\ngamma"},
		{"one two three", 80, "one two three"},
		{"one two three", 8, "one two\nthree"},
		{"Mueller Uenal Oest", 14, "Mueller Uenal\nOest"},
		{"Müller Ünal Øst", 12, "Müller Ünal\nØst"},
		{"Øst, et al. (2019)", 12, "Øst, et al.\n(2019)"},
	}
	for _, tt := range tests {
		if got := Wrap(tt.text, tt.width); got != tt.want {
			t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestWriteDOT(t *testing.T) {
	corpus := document.Corpus{}
	corpus.Put(doc("1", nil, []string{"2"}))
	corpus.Put(doc("2", []string{"1"}, nil))

	var buf bytes.Buffer
	if err := WriteDOT(&buf, Assemble(corpus, Options{})); err != nil {
		t.Fatalf("WriteDOT() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"digraph {\n",
		"rankdir=BT\n",
		"edge [arrowhead=none]\n",
		`"1" [label="(` + ")\" href=\"https://pubmed.ncbi.nlm.nih.gov/1/\"",
		`fillcolor="#FFDC8C" margin=0.05]`,
		`"1":n->"2":s [penwidth=0.000000]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("DOT output not closed:\n%s", out)
	}
}

func TestWriteDOT_EscapesBackslashes(t *testing.T) {
	cited := doc("2", []string{"1"}, nil)
	cited.Title = `Paths like C:\data and "quoted" words`
	cited.Journal = `J\`
	corpus := document.Corpus{}
	corpus.Put(doc("1", nil, []string{"2"}))
	corpus.Put(cited)

	var buf bytes.Buffer
	if err := WriteDOT(&buf, Assemble(corpus, Options{})); err != nil {
		t.Fatalf("WriteDOT() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`Title: Paths like C:\\data and 'quoted' words`,
		`Journal: J\\" fillcolor=`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCytoscape(t *testing.T) {
	corpus := document.Corpus{}
	corpus.Put(doc("1", nil, []string{"2"}))
	corpus.Put(doc("2", nil, nil))

	var buf bytes.Buffer
	if err := WriteCytoscape(&buf, Assemble(corpus, Options{})); err != nil {
		t.Fatalf("WriteCytoscape() error = %v", err)
	}

	var elements CytoscapeElements
	if err := json.Unmarshal(buf.Bytes(), &elements); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(elements.Nodes) != 2 || len(elements.Edges) != 1 {
		t.Fatalf("elements = %+v", elements)
	}
	if e := elements.Edges[0].Data; e.ID != "1-2" || e.From != "1" || e.To != "2" {
		t.Errorf("edge = %+v", e)
	}
}

func TestWriteHTML(t *testing.T) {
	corpus := document.Corpus{}
	corpus.Put(doc("1", nil, []string{"2"}))
	corpus.Put(doc("2", nil, nil))
	g := Assemble(corpus, Options{})

	var buf bytes.Buffer
	if err := WriteHTML(&buf, g, "demo <1>", "tree"); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>demo &lt;1&gt;</title>",
		`"source":"1"`,
		`"breadthfirst"`,
		cytoscapeScript,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "cose", false},
		{"force", "cose", false},
		{"Circle", "circle", false},
		{"grid", "grid", false},
		{"tree", "breadthfirst", false},
		{"spiral", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLayout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayout(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLayout(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if err := WriteHTML(&bytes.Buffer{}, &Graph{}, "x", "spiral"); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("WriteHTML with bad layout = %v, want ErrInvalidLayout", err)
	}
}
