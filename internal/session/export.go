package session

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/citegraph/gref/internal/export"
	"github.com/citegraph/gref/internal/graph"
	"github.com/citegraph/gref/internal/render"
	"github.com/citegraph/gref/internal/report"
	"github.com/citegraph/gref/internal/storage"
)

// walkWidth is the wrap column for report walks.
const walkWidth = 76

func (c *Controller) graph(ctx context.Context, args []string) error {
	format := "dot"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	var (
		path string
		err  error
	)
	switch format {
	case "dot", "gv":
		path, err = c.writeGraph()
	case "cyjs", "json":
		g := c.assemble()
		path, err = c.writeArtifact(storage.KindCytoscape, func(w io.Writer) error {
			return graph.WriteCytoscape(w, g)
		})
	case "html":
		layout := ""
		if len(args) > 1 {
			layout = args[1]
		}
		if _, err := graph.ParseLayout(layout); err != nil {
			return usageError("%v", err)
		}
		g := c.assemble()
		path, err = c.writeArtifact(storage.KindHTML, func(w io.Writer) error {
			return graph.WriteHTML(w, g, c.name, layout)
		})
	default:
		return usageError("unknown graph format %q (valid: dot, cyjs, html)", args[0])
	}
	if err != nil {
		return err
	}

	c.out.Println("Wrote %s", path)
	return nil
}

func (c *Controller) assemble() *graph.Graph {
	g := graph.Assemble(c.corpus, graph.Options{Similarity: c.similarity})
	if g.IsEmpty() {
		c.out.Warn("No citations link documents in %s; the graph is empty", c.name)
	}
	return g
}

func (c *Controller) writeGraph() (string, error) {
	g := c.assemble()
	return c.writeArtifact(storage.KindGraph, func(w io.Writer) error {
		return graph.WriteDOT(w, g)
	})
}

func (c *Controller) render(ctx context.Context, args []string) error {
	format, err := render.ParseFormat(args[0])
	if err != nil {
		return usageError("%v", err)
	}
	dpi := 0
	if len(args) > 1 {
		dpi, err = strconv.Atoi(args[1])
		if err != nil || dpi <= 0 {
			return usageError("dpi must be a positive integer, got %q", args[1])
		}
	}
	if c.renderer == nil {
		return render.ErrUnavailable
	}

	src, err := c.writeGraph()
	if err != nil {
		return err
	}
	dst, err := c.store.Prepare(storage.Kind(format), c.name)
	if err != nil {
		return err
	}

	c.out.Muted("dot %s", strings.Join(render.Args(format, dpi, src, dst), " "))
	if err := c.renderer.Render(ctx, format, dpi, src, dst); err != nil {
		return err
	}
	c.out.Println("Wrote %s", dst)
	return nil
}

func (c *Controller) exportTable(ctx context.Context, args []string) error {
	format := "csv"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	var (
		path string
		err  error
	)
	switch format {
	case "csv":
		path, err = c.writeArtifact(storage.KindCSV, func(w io.Writer) error {
			return export.WriteCSV(w, c.corpus)
		})
	case "bib", "bibtex":
		path, err = c.writeArtifact(storage.KindBibTeX, func(w io.Writer) error {
			return export.WriteBibTeX(w, c.corpus)
		})
	case "sqlite", "db":
		path, err = c.store.Prepare(storage.KindSQLite, c.name)
		if err == nil {
			_, err = export.WriteSQLite(ctx, path, c.corpus)
		}
	default:
		return usageError("unknown table format %q (valid: csv, bib, sqlite)", args[0])
	}
	if err != nil {
		return err
	}

	c.out.Println("Wrote %s", path)
	return nil
}

func (c *Controller) exportReport(ctx context.Context, args []string) error {
	size, err := report.ParseSize(args[0])
	if err != nil {
		return usageError("%v", err)
	}
	steps := report.DefaultWalkLength
	if len(args) > 1 {
		steps, err = strconv.Atoi(args[1])
		if err != nil || steps < 0 {
			return usageError("steps must be a non-negative integer, got %q", args[1])
		}
	}

	entries := report.Count(c.corpus, size)
	path, err := c.writeArtifact(storage.KindReport, func(w io.Writer) error {
		return report.WriteCounts(w, entries)
	})
	if err != nil {
		return err
	}
	c.out.Println("Wrote %s", path)

	words, err := report.NewChain(entries, size).Walk(ctx, steps, c.rng)
	if len(words) > 0 {
		c.out.Println("%s", graph.Wrap(strings.Join(words, " "), walkWidth))
	}
	return err
}
