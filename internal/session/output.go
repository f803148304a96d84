package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Indent prefixes every line of command output.
const Indent = "    "

var (
	colorAccent  = lipgloss.Color("#96E6FF")
	colorWarning = lipgloss.Color("#FFDC8C")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

// Printer writes command output, styled when the writer is a terminal.
type Printer struct {
	w       io.Writer
	prompt  lipgloss.Style
	title   lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a printer for w. Color support is detected from w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		prompt:  r.NewStyle().Bold(true).Foreground(colorAccent),
		title:   r.NewStyle().Bold(true),
		warning: r.NewStyle().Foreground(colorWarning),
		err:     r.NewStyle().Foreground(colorError),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// Println writes an indented line (or block).
func (p *Printer) Println(format string, args ...any) {
	fmt.Fprintln(p.w, indent(fmt.Sprintf(format, args...)))
}

// Title writes an indented bold line.
func (p *Printer) Title(format string, args ...any) {
	fmt.Fprintln(p.w, indent(p.title.Render(fmt.Sprintf(format, args...))))
}

// Muted writes an indented dim line.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, indent(p.muted.Render(fmt.Sprintf(format, args...))))
}

// Warn writes an indented warning.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, indent(p.warning.Render(fmt.Sprintf(format, args...))))
}

// Error writes an indented error.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, indent(p.err.Render("Error: "+err.Error())))
}

// Prompt writes the prompt without a trailing newline.
func (p *Printer) Prompt(s string) {
	fmt.Fprint(p.w, "\n"+p.prompt.Render(s)+" ")
}

func indent(s string) string {
	return Indent + strings.ReplaceAll(s, "\n", "\n"+Indent)
}
