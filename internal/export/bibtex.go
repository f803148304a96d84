package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/citegraph/gref/internal/document"
)

// ToBibTeX converts a document to a BibTeX article entry keyed "pmid<ID>".
func ToBibTeX(d document.Document) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@article{pmid%s,\n", d.ID))

	// Authors
	if len(d.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(d.Authors)))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(d.Title)))

	if d.Journal != "" {
		b.WriteString(fmt.Sprintf("  journal = {%s},\n", escapeLatex(d.Journal)))
	}

	if year := d.Year(); year != "" {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", year))
	}

	b.WriteString(fmt.Sprintf("  pmid = {%s},\n", d.ID))
	b.WriteString(fmt.Sprintf("  url = {https://pubmed.ncbi.nlm.nih.gov/%s/},\n", d.ID))

	// Abstract (optional, if present)
	if d.Abstract != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(d.Abstract)))
	}

	b.WriteString("}\n")

	return b.String()
}

// WriteBibTeX writes every document as a BibTeX entry, ordered by ID.
func WriteBibTeX(w io.Writer, corpus document.Corpus) error {
	entries := make([]string, 0, len(corpus))
	for _, d := range corpus.Sorted() {
		entries = append(entries, ToBibTeX(d))
	}
	if _, err := io.WriteString(w, strings.Join(entries, "\n")); err != nil {
		return fmt.Errorf("writing BibTeX: %w", err)
	}
	return nil
}

// formatAuthors joins display names ("Last, Fore Initials") with "and".
// Collective names are braced so BibTeX keeps them whole.
func formatAuthors(authors []document.Author) string {
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		name := escapeLatex(a.Name)
		if !strings.Contains(a.Name, ",") {
			name = "{" + name + "}"
		}
		formatted = append(formatted, name)
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
