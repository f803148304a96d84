// Package render turns graph descriptions into images via Graphviz.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when the Graphviz binary is not on PATH.
var ErrUnavailable = errors.New("graphviz dot unavailable")

// ErrUnsupportedFormat is returned for output formats other than Formats.
var ErrUnsupportedFormat = errors.New("unsupported render format")

// Formats lists the supported output formats.
var Formats = []string{"png", "svg", "pdf"}

// Renderer renders a graph description file into an image file.
type Renderer interface {
	Render(ctx context.Context, format string, dpi int, src, dst string) error
}

// ParseFormat normalizes and checks a format name.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	for _, ok := range Formats {
		if f == ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnsupportedFormat, s, strings.Join(Formats, ", "))
}

// DotRenderer runs the Graphviz dot command.
type DotRenderer struct {
	Binary string // Defaults to "dot"
}

// NewDotRenderer creates a renderer using dot from PATH.
func NewDotRenderer() *DotRenderer {
	return &DotRenderer{Binary: "dot"}
}

// IsAvailable checks if the dot binary can be found.
func (r *DotRenderer) IsAvailable() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

// Args returns the dot arguments for rendering src to dst.
// A non-positive dpi leaves the resolution to Graphviz.
func Args(format string, dpi int, src, dst string) []string {
	args := []string{"-T" + format}
	if dpi > 0 {
		args = append(args, "-Gdpi="+strconv.Itoa(dpi))
	}
	return append(args, src, "-o", dst)
}

// Render runs dot. Output written to stderr by dot is included in the error.
func (r *DotRenderer) Render(ctx context.Context, format string, dpi int, src, dst string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}

	path, err := exec.LookPath(r.binary())
	if err != nil {
		return ErrUnavailable
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, Args(format, dpi, src, dst)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s: %w: %s", r.binary(), err, msg)
		}
		return fmt.Errorf("running %s: %w", r.binary(), err)
	}
	return nil
}

func (r *DotRenderer) binary() string {
	if r.Binary == "" {
		return "dot"
	}
	return r.Binary
}
