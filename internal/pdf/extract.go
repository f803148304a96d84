// Package pdf extracts article identifiers from PDF files.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// SearchPages is the number of leading pages scanned for identifiers.
const SearchPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

var pmidPattern = regexp.MustCompile(`(?i)\bPMID:?\s*(\d{1,9})\b`)

// Identifiers holds what could be recovered from a PDF. Any field may be empty.
type Identifiers struct {
	PMID  string
	DOI   string
	Title string
}

// IsEmpty reports whether nothing usable was found.
func (ids Identifiers) IsEmpty() bool {
	return ids.PMID == "" && ids.DOI == "" && ids.Title == ""
}

// Query returns a PubMed search term for the strongest identifier, or "".
// A PMID needs no search and yields "".
func (ids Identifiers) Query() string {
	switch {
	case ids.PMID != "":
		return ""
	case ids.DOI != "":
		return ids.DOI + "[doi]"
	case ids.Title != "":
		return ids.Title + "[title]"
	default:
		return ""
	}
}

// ExtractIdentifiers scans the first SearchPages pages of the PDF at path.
func ExtractIdentifiers(path string) (Identifiers, error) {
	text, err := ExtractText(path, SearchPages)
	if err != nil {
		return Identifiers{}, err
	}
	return FindIdentifiers(text), nil
}

// FindIdentifiers looks for a PMID, a DOI and a title-like first line in text.
func FindIdentifiers(text string) Identifiers {
	return Identifiers{
		PMID:  findPMID(text),
		DOI:   findDOI(text),
		Title: findTitle(text),
	}
}

// ExtractText extracts all text from the first maxPages pages of a PDF.
// A non-positive maxPages reads every page.
func ExtractText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func findPMID(text string) string {
	m := pmidPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Remove trailing punctuation
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// findTitle returns the first substantial line that is not a running header.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) && doiPattern.FindString(line) == "" {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
