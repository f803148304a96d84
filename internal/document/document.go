// Package document defines the core domain types for crawled articles.
package document

import (
	"sort"
	"strings"
)

// Document represents an article fetched from the bibliographic API.
type Document struct {
	// Identity
	ID string `json:"id" validate:"required"` // PMID for PubMed records

	// Metadata
	Title    string   `json:"title"`
	Authors  []Author `json:"authors" validate:"dive"`
	Journal  string   `json:"journal"`
	Date     string   `json:"date"` // First token is the year, e.g. "2019 Mar 4"
	Abstract string   `json:"abstract,omitempty"`

	// Links. Nil until link expansion; set together afterwards.
	References []string `json:"references"` // Bibliography of this document
	CitedIn    []string `json:"citedIn"`    // Documents citing this one
	Related    []string `json:"related"`    // API-suggested neighbours
}

// Author is an ordered author entry with an optional ORCID.
type Author struct {
	ORCID string `json:"orcid,omitempty"`
	Name  string `json:"name"` // "Last, Fore Initials"
}

// LastName returns the part of the display name before the first comma.
func (a Author) LastName() string {
	last, _, _ := strings.Cut(a.Name, ",")
	return strings.TrimSpace(last)
}

// Expanded reports whether the document carries link data.
func (d *Document) Expanded() bool {
	return d.References != nil && d.CitedIn != nil && d.Related != nil
}

// Year returns the first token of the date, or "" if there is none.
func (d *Document) Year() string {
	fields := strings.Fields(d.Date)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LastNames returns author last names in order.
func (d *Document) LastNames() []string {
	names := make([]string, 0, len(d.Authors))
	for _, a := range d.Authors {
		names = append(names, a.LastName())
	}
	return names
}

// Corpus maps identifiers to documents.
type Corpus map[string]Document

// IDs returns the corpus identifiers in sorted order.
func (c Corpus) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether id is present.
func (c Corpus) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Put inserts or replaces a document keyed by its ID.
func (c Corpus) Put(d Document) {
	c[d.ID] = d
}

// Sorted returns the documents ordered by identifier.
func (c Corpus) Sorted() []Document {
	docs := make([]Document, 0, len(c))
	for _, id := range c.IDs() {
		docs = append(docs, c[id])
	}
	return docs
}
