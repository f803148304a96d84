// Package session drives an interactive crawl: it owns the loaded corpus,
// dispatches commands according to the current state and saves the corpus
// before every prompt.
package session

import (
	"errors"
	"fmt"
)

// State is the controller state.
type State int

const (
	// Uninitialized means no corpus is loaded.
	Uninitialized State = iota
	// Active means a corpus is loaded and mutable.
	Active
	// Terminated means the session has ended.
	Terminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrInvalidArgument is returned for unknown commands and bad arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrWrongState is returned for commands not valid in the current state.
	ErrWrongState = errors.New("command not available")

	// ErrInterrupted is reported when the user cancels a running command.
	ErrInterrupted = errors.New("interrupted")
)
