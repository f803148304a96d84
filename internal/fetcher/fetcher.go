// Package fetcher turns identifiers into link-expanded documents and merges
// them into a corpus.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/eutils"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds simultaneous link expansions. The shared rate
// gate still serializes the actual requests.
const DefaultConcurrency = 3

// API is the bibliographic API the fetcher depends on.
type API interface {
	Search(ctx context.Context, term string) ([]string, error)
	FetchMetadata(ctx context.Context, ids []string) ([]document.Document, error)
	FetchLinks(ctx context.Context, id string) (eutils.Links, error)
}

// Fetcher fetches and link-expands documents.
type Fetcher struct {
	api         API
	logger      *log.Logger
	concurrency int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithConcurrency sets the number of concurrent link expansions.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Fetcher backed by api.
func New(api API, opts ...Option) *Fetcher {
	f := &Fetcher{
		api:         api,
		logger:      log.New(io.Discard),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Result reports the outcome of an Add call.
type Result struct {
	Added  []string         // Identifiers merged into the corpus, in request order
	Failed map[string]error // Identifiers skipped, with the reason
}

// FetchBatch fetches metadata for ids in one call. CitedIn and Related are unset.
func (f *Fetcher) FetchBatch(ctx context.Context, ids []string) ([]document.Document, error) {
	return f.api.FetchMetadata(ctx, ids)
}

// ExpandLinks returns doc with CitedIn and Related populated. References are
// kept from the metadata fetch and normalized to a non-nil slice.
func (f *Fetcher) ExpandLinks(ctx context.Context, doc document.Document) (document.Document, error) {
	links, err := f.api.FetchLinks(ctx, doc.ID)
	if err != nil {
		return doc, fmt.Errorf("expanding links for %s: %w", doc.ID, err)
	}

	if doc.References == nil {
		doc.References = []string{}
	}
	doc.CitedIn = nonNil(links.CitedIn)
	doc.Related = nonNil(links.Related)
	return doc, nil
}

// Add fetches ids, expands their links and merges the successes into corpus,
// replacing earlier entries. One failing identifier never aborts the batch.
// If ctx is cancelled, expansions that already completed are still merged
// and ctx's error is returned alongside the partial result.
func (f *Fetcher) Add(ctx context.Context, corpus document.Corpus, ids []string) (Result, error) {
	ids = dedupe(ids)
	res := Result{Failed: make(map[string]error)}
	if len(ids) == 0 {
		return res, nil
	}

	docs, err := f.FetchBatch(ctx, ids)
	if err != nil {
		for _, id := range ids {
			res.Failed[id] = err
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, nil
	}

	byID := make(map[string]document.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	expanded := make([]*document.Document, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, id := range ids {
		doc, ok := byID[id]
		if !ok {
			errs[i] = fmt.Errorf("%s: %w", id, eutils.ErrNotFound)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				errs[i] = gctx.Err()
				return nil
			}
			d, err := f.ExpandLinks(gctx, doc)
			if err != nil {
				errs[i] = err
				return nil
			}
			expanded[i] = &d
			return nil
		})
	}
	// Goroutines report through errs; Wait never returns an error here.
	_ = g.Wait()

	for i, id := range ids {
		if d := expanded[i]; d != nil {
			corpus.Put(*d)
			res.Added = append(res.Added, id)
			f.logger.Debug("Merged document", "id", id, "references", len(d.References), "citedIn", len(d.CitedIn), "related", len(d.Related))
			continue
		}
		res.Failed[id] = errs[i]
		if !errors.Is(errs[i], context.Canceled) {
			f.logger.Warn("Skipping document", "id", id, "err", errs[i])
		}
	}

	return res, ctx.Err()
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
