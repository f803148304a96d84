package session

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/fetcher"
	"github.com/citegraph/gref/internal/frontier"
	"github.com/citegraph/gref/internal/pdf"
	"github.com/citegraph/gref/internal/render"
	"github.com/citegraph/gref/internal/similarity"
	"github.com/citegraph/gref/internal/storage"
)

// Controller is the session state machine. It is not safe for concurrent use;
// one goroutine drives it.
type Controller struct {
	api      fetcher.API
	fetcher  *fetcher.Fetcher
	store    *storage.Store
	renderer render.Renderer
	logger   *log.Logger
	out      *Printer
	rng      *rand.Rand

	batchSize   int
	concurrency int
	similarity  similarity.Mode
	extractPDF  func(path string) (pdf.Identifiers, error)
	interactive bool

	state  State
	name   string
	corpus document.Corpus
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer sets the image renderer used by RENDER.
func WithRenderer(r render.Renderer) Option {
	return func(c *Controller) {
		c.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOutput sets where command output is written.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) {
		c.out = NewPrinter(w)
	}
}

// WithRand sets the random source for frontier tie-breaks and report walks.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		c.rng = rng
	}
}

// WithBatchSize sets the number of identifiers fetched per grow cycle.
func WithBatchSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithConcurrency sets the number of concurrent link expansions.
func WithConcurrency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithSimilarity sets the mode used for graph edge weights.
func WithSimilarity(m similarity.Mode) Option {
	return func(c *Controller) {
		c.similarity = m
	}
}

// WithPDFExtractor replaces the PDF identifier extractor used by ADDPDF.
func WithPDFExtractor(fn func(path string) (pdf.Identifiers, error)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.extractPDF = fn
		}
	}
}

// WithInteractive controls whether Run writes prompts.
func WithInteractive(on bool) Option {
	return func(c *Controller) {
		c.interactive = on
	}
}

// New creates a controller in the Uninitialized state.
func New(api fetcher.API, store *storage.Store, opts ...Option) *Controller {
	c := &Controller{
		api:         api,
		store:       store,
		renderer:    render.NewDotRenderer(),
		logger:      log.New(io.Discard),
		out:         NewPrinter(os.Stdout),
		batchSize:   frontier.DefaultBatchSize,
		concurrency: fetcher.DefaultConcurrency,
		similarity:  similarity.Weighted,
		extractPDF:  pdf.ExtractIdentifiers,
		interactive: true,
		state:       Uninitialized,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.fetcher = fetcher.New(api, fetcher.WithConcurrency(c.concurrency), fetcher.WithLogger(c.logger))
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Name returns the name of the loaded corpus, or "".
func (c *Controller) Name() string {
	return c.name
}

// Corpus returns the loaded corpus, or nil when none is loaded.
func (c *Controller) Corpus() document.Corpus {
	return c.corpus
}

// Autosave persists the corpus when one is loaded. Unchanged corpora are not rewritten.
func (c *Controller) Autosave() error {
	if c.state != Active {
		return nil
	}
	written, err := c.store.Save(c.name, c.corpus)
	if err != nil {
		return fmt.Errorf("saving %s: %w", c.name, err)
	}
	if written {
		c.logger.Debug("Saved corpus", "name", c.name, "documents", len(c.corpus))
	}
	return nil
}

// Execute runs one command line. Errors are recoverable: the state is left
// as it was unless the command itself changes it.
func (c *Controller) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("%w: no command provided (try HELP)", ErrInvalidArgument)
	}
	if c.state == Terminated {
		return fmt.Errorf("%w: session has ended", ErrWrongState)
	}

	name, args := strings.ToUpper(fields[0]), fields[1:]
	cmd, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: unknown command %q (try HELP)", ErrInvalidArgument, fields[0])
	}
	if !cmd.validIn(c.state) {
		return fmt.Errorf("%w: %s while %s", ErrWrongState, cmd.name, c.state)
	}
	if len(args) < cmd.minArgs {
		return fmt.Errorf("%w: usage: %s", ErrInvalidArgument, cmd.usage)
	}

	c.logger.Debug("Running command", "command", cmd.name, "args", args)
	return cmd.run(c, ctx, args)
}

func (c *Controller) prompt() string {
	if c.state == Active {
		return "gref:" + c.name + ">"
	}
	return "gref>"
}

// activate makes corpus the loaded corpus.
func (c *Controller) activate(name string, corpus document.Corpus) {
	c.name = name
	c.corpus = corpus
	c.state = Active
}

func (c *Controller) reset() {
	c.name = ""
	c.corpus = nil
	c.state = Uninitialized
}

// writeArtifact creates the artifact of kind for the loaded corpus and fills it with write.
func (c *Controller) writeArtifact(kind storage.Kind, write func(io.Writer) error) (string, error) {
	path, err := c.store.Prepare(kind, c.name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
