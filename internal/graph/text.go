package graph

import (
	"strings"
	"unicode/utf8"

	"github.com/citegraph/gref/internal/document"
)

// Label returns a short citation such as "Smith & Jones (2019)",
// "Smith, Jones, & Lee (2019)" or "Smith, et al. (2019)", wrapped at LabelWidth.
func Label(d document.Document) string {
	names := d.LastNames()

	var who string
	switch n := len(names); {
	case n == 0:
		who = ""
	case n == 1:
		who = names[0]
	case n == 2:
		who = names[0] + " & " + names[1]
	case n == 3:
		who = names[0] + ", " + names[1] + ", & " + names[2]
	default:
		who = names[0] + ", et al."
	}

	return Wrap(strings.TrimSpace(who+" ("+d.Year()+")"), LabelWidth)
}

// Tooltip returns a multi-line summary of d. Double quotes become single quotes.
func Tooltip(d document.Document) string {
	lines := []string{
		"Title: " + d.Title,
		"~",
		"By: " + strings.Join(d.LastNames(), ", "),
		"Date: " + d.Date,
		"~",
		"Abstract: " + d.Abstract,
		"~",
		"PMID: " + d.ID,
		"Journal: " + d.Journal,
	}
	return strings.ReplaceAll(strings.Join(lines, "\n"), `"`, "'")
}

// Wrap greedily fills lines shorter than width characters. Hyphenated words may break
// after the hyphen. Text with fewer than two words is returned unchanged.
func Wrap(text string, width int) string {
	words := strings.Fields(strings.ReplaceAll(text, "-", "- "))
	if len(words) < 2 {
		return text
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		trial := line + " " + w
		if utf8.RuneCountInString(trial) < width {
			line = trial
			continue
		}
		lines = append(lines, strings.ReplaceAll(line, "- ", "-"))
		line = w
	}
	lines = append(lines, strings.ReplaceAll(line, "- ", "-"))

	return strings.Join(lines, "\n")
}
