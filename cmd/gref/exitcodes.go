package main

import (
	"context"
	"errors"

	"github.com/citegraph/gref/internal/eutils"
	"github.com/citegraph/gref/internal/session"
	"github.com/citegraph/gref/internal/storage"
)

// Exit codes
const (
	ExitSuccess     = 0   // Success
	ExitError       = 1   // General error (invalid arguments, runtime failure)
	ExitConfigError = 2   // Configuration error (unreadable or invalid config)
	ExitDataError   = 3   // Data error (missing or malformed corpus)
	ExitAPIError    = 4   // E-utilities unreachable after retries
	ExitInterrupted = 130 // Cancelled by SIGINT
)

// configError marks an error as a configuration problem.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var cfgErr configError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.Is(err, session.ErrInterrupted), errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrMalformed), errors.Is(err, storage.ErrAlreadyExists):
		return ExitDataError
	case eutils.IsTransport(err), eutils.IsRateLimited(err):
		return ExitAPIError
	default:
		return ExitError
	}
}
