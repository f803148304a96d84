package session

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/fetcher"
	"github.com/citegraph/gref/internal/graph"
)

// summaryWidth is the wrap column for search result summaries.
const summaryWidth = 69

func (c *Controller) search(ctx context.Context, args []string) error {
	term := strings.Join(args, " ")
	ids, err := c.api.Search(ctx, term)
	if err != nil {
		return fmt.Errorf("searching %q: %w", term, err)
	}
	if len(ids) == 0 {
		c.out.Warn("No results!")
		return nil
	}

	docs, err := c.api.FetchMetadata(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetching search results: %w", err)
	}
	byID := make(map[string]document.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	var summaries []string
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			summaries = append(summaries, Summary(d))
		}
	}
	c.out.Println("%s", strings.Join(summaries, "\n\n"))
	return nil
}

// Summary formats a search result: identifier, title and author last names.
func Summary(d document.Document) string {
	return strings.Join([]string{
		" PMID: " + d.ID,
		hang("Title: ", graph.Wrap(d.Title, summaryWidth)),
		hang("   By: ", graph.Wrap(strings.Join(d.LastNames(), ", "), summaryWidth)),
	}, "\n")
}

func (c *Controller) add(ctx context.Context, args []string) error {
	res, err := c.fetcher.Add(ctx, c.corpus, args)
	c.report(res)
	return err
}

func (c *Controller) report(res fetcher.Result) {
	for _, id := range res.Added {
		c.out.Println("Found %s...", id)
	}
	failed := make([]string, 0, len(res.Failed))
	for id := range res.Failed {
		failed = append(failed, id)
	}
	sort.Strings(failed)
	for _, id := range failed {
		c.out.Warn("Skipped %s: %v", id, res.Failed[id])
	}
}

func (c *Controller) addPDF(ctx context.Context, args []string) error {
	path := strings.Join(args, " ")
	ids, err := c.extractPDF(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if ids.PMID != "" {
		c.out.Muted("PMID %s found in %s", ids.PMID, path)
		return c.add(ctx, []string{ids.PMID})
	}

	query := ids.Query()
	if query == "" {
		return fmt.Errorf("no PMID, DOI or title found in %s", path)
	}
	c.out.Muted("Searching %s", query)
	found, err := c.api.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}
	if len(found) == 0 {
		return fmt.Errorf("no PubMed record matches %s", query)
	}
	return c.add(ctx, found[:1])
}

func (c *Controller) grow(ctx context.Context, args []string) error {
	cycles := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return usageError("cycles must be a non-negative integer, got %q", args[0])
		}
		cycles = n
	}

	res, err := c.fetcher.Grow(ctx, c.corpus, cycles, c.batchSize, c.rng, func(r fetcher.CycleReport) {
		c.report(r.Result)
		c.out.Muted("Cycle %d/%d: corpus has %d documents", r.Cycle, cycles, r.Size)
	})
	if res.Exhausted {
		c.out.Warn("Frontier is empty; nothing left to grow into")
	}
	return err
}
