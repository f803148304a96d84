package main

import (
	"io"
	"math/rand/v2"
	"os"

	"github.com/charmbracelet/log"
	"github.com/citegraph/gref/internal/config"
	"github.com/citegraph/gref/internal/eutils"
	"github.com/citegraph/gref/internal/ratelimit"
	"github.com/citegraph/gref/internal/session"
	"github.com/citegraph/gref/internal/storage"
)

// app holds what every command needs: configuration, logger, API client and store.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	client *eutils.Client
	store  *storage.Store
}

// setup loads configuration, applies flag overrides and builds the client.
func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configError{err}
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError{err}
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "gref",
	})

	client := eutils.NewClient(ratelimit.NewGate(cfg.MinInterval),
		eutils.WithAPIKey(cfg.APIKey),
		eutils.WithEmail(cfg.Email),
		eutils.WithTool(cfg.Tool),
		eutils.WithBaseURL(cfg.BaseURL),
		eutils.WithAttempts(cfg.Attempts),
		eutils.WithTimeout(cfg.Timeout),
		eutils.WithLogger(logger),
	)

	logger.Debug("Configured", "data_dir", cfg.DataDir, "interval", cfg.MinInterval, "similarity", cfg.Similarity)
	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		store:  storage.NewStore(cfg.DataDir),
	}, nil
}

// controller creates a session controller writing to out.
func (a *app) controller(out io.Writer, interactive bool) *session.Controller {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithOutput(out),
		session.WithBatchSize(a.cfg.BatchSize),
		session.WithConcurrency(a.cfg.Concurrency),
		session.WithSimilarity(a.cfg.SimilarityMode()),
		session.WithInteractive(interactive),
	}
	if a.cfg.Seed != nil {
		opts = append(opts, session.WithRand(rand.New(rand.NewPCG(*a.cfg.Seed, *a.cfg.Seed))))
	}
	return session.New(a.client, a.store, opts...)
}
