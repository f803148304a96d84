package eutils

import (
	"strings"

	"github.com/citegraph/gref/internal/document"
)

// mapArticle converts an efetch record into a Document. The bibliography is
// carried in References; CitedIn and Related stay nil until link expansion.
func mapArticle(a pubmedArticle) document.Document {
	abstract := make([]string, 0, len(a.Article.Abstract))
	for _, section := range a.Article.Abstract {
		if s := string(section); s != "" {
			abstract = append(abstract, s)
		}
	}

	return document.Document{
		ID:         strings.TrimSpace(a.PMID),
		Title:      string(a.Article.Title),
		Authors:    mapAuthors(a.Article.Authors),
		Journal:    strings.TrimSpace(a.Article.Journal.Title),
		Date:       a.Article.Journal.PubDate.String(),
		Abstract:   strings.Join(abstract, " "),
		References: pubmedReferences(a.References),
	}
}

// mapAuthors converts efetch authors to display-name authors.
func mapAuthors(authors []author) []document.Author {
	out := make([]document.Author, 0, len(authors))
	for _, a := range authors {
		out = append(out, document.Author{
			ORCID: orcid(a.Identifiers),
			Name:  displayName(a),
		})
	}
	return out
}

// displayName formats "Last, Fore Initials", falling back to the collective name.
func displayName(a author) string {
	last := strings.TrimSpace(a.LastName)
	if last == "" {
		return strings.TrimSpace(a.CollectiveName)
	}
	given := strings.TrimSpace(strings.Join([]string{strings.TrimSpace(a.ForeName), strings.TrimSpace(a.Initials)}, " "))
	if given == "" {
		return last
	}
	return last + ", " + given
}

// orcid returns the bare ORCID (without URL prefix) if one is listed.
func orcid(ids []identifier) string {
	for _, id := range ids {
		if !strings.EqualFold(id.Source, "ORCID") {
			continue
		}
		value := strings.TrimRight(strings.TrimSpace(id.Value), "/")
		if i := strings.LastIndex(value, "/"); i >= 0 {
			value = value[i+1:]
		}
		return value
	}
	return ""
}

// pubmedReferences keeps the PubMed identifiers of the bibliography, in order,
// without duplicates. Always returns a non-nil slice.
func pubmedReferences(ids []articleID) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !strings.EqualFold(id.IDType, "pubmed") {
			continue
		}
		v := strings.TrimSpace(id.Value)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
