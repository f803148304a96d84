package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
)

// InputReader supplies command lines. ReadLine returns io.EOF when input ends.
type InputReader interface {
	ReadLine() (string, error)
}

type lineReader struct {
	scanner *bufio.Scanner
}

// NewLineReader reads newline-terminated command lines from r.
func NewLineReader(r io.Reader) InputReader {
	return &lineReader{scanner: bufio.NewScanner(r)}
}

func (r *lineReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type input struct {
	line string
	err  error
}

// Run drives the prompt loop until EXIT, end of input or ctx is done. The
// corpus is saved before every prompt. An interrupt while a command runs
// cancels that command only; an interrupt at the prompt ends the session.
func (c *Controller) Run(ctx context.Context, in InputReader, interrupts <-chan os.Signal) error {
	lines := make(chan input)
	next := make(chan struct{})
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-next:
			case <-done:
				return
			}
			line, err := in.ReadLine()
			select {
			case lines <- input{line, err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for c.state != Terminated {
		if err := c.Autosave(); err != nil {
			c.out.Error(err)
		}
		if c.interactive {
			c.out.Prompt(c.prompt())
		}

		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			return c.finish(ctx.Err())
		}

		select {
		case <-ctx.Done():
			return c.finish(ctx.Err())
		case <-interrupts:
			c.logger.Debug("Interrupted at prompt")
			return c.finish(nil)
		case got := <-lines:
			if got.err != nil {
				if errors.Is(got.err, io.EOF) {
					return c.finish(nil)
				}
				return c.finish(got.err)
			}
			c.runLine(ctx, got.line, interrupts)
		}
	}

	return c.finish(nil)
}

// runLine executes one line with its own cancellable context.
func (c *Controller) runLine(ctx context.Context, line string, interrupts <-chan os.Signal) {
	cmdCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupted := make(chan struct{})
	finished := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-finished:
			return
		default:
		}
		select {
		case <-interrupts:
			close(interrupted)
			cancel()
		case <-finished:
		}
	}()

	err := c.Execute(cmdCtx, line)
	close(finished)
	// The watcher must not outlive the command, or it could take the
	// interrupt meant for the next one.
	<-watcherDone

	if err == nil {
		return
	}
	select {
	case <-interrupted:
		if errors.Is(err, context.Canceled) {
			err = ErrInterrupted
		}
	default:
	}
	c.out.Error(err)
}

// finish saves the corpus one last time and ends the session.
func (c *Controller) finish(cause error) error {
	saveErr := c.Autosave()
	c.state = Terminated
	if cause != nil {
		return cause
	}
	return saveErr
}
