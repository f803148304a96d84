// Package export writes a corpus to tabular and bibliographic formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/citegraph/gref/internal/document"
)

// ListSeparator joins list-valued columns in the CSV export.
const ListSeparator = "|"

// CSVHeader is the column order of the CSV export.
var CSVHeader = []string{"id", "title", "authors", "journal", "date", "abstract", "references", "citedIn", "related"}

// WriteCSV writes one row per document, ordered by ID. List columns are
// joined with ListSeparator.
func WriteCSV(w io.Writer, corpus document.Corpus) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, d := range corpus.Sorted() {
		names := make([]string, len(d.Authors))
		for i, a := range d.Authors {
			names[i] = a.Name
		}
		row := []string{
			d.ID,
			d.Title,
			strings.Join(names, ListSeparator),
			d.Journal,
			d.Date,
			d.Abstract,
			strings.Join(d.References, ListSeparator),
			strings.Join(d.CitedIn, ListSeparator),
			strings.Join(d.Related, ListSeparator),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", d.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
