// Package eutils provides a client for the NCBI E-utilities API (PubMed).
package eutils

import (
	"encoding/xml"
	"strings"
)

// Link names returned by elink that map onto document link fields.
const (
	LinkNameCitedIn = "pubmed_pubmed_citedin"
	LinkNameRelated = "pubmed_pubmed_five"
)

// Links holds the link-discovery result for one identifier.
type Links struct {
	CitedIn []string `json:"citedIn"`
	Related []string `json:"related"`
}

// searchResult is the esearch response body.
type searchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDs     []string `xml:"IdList>Id"`
	Errors  []string `xml:"ErrorList>PhraseNotFound"`
}

// articleSet is the efetch response body.
type articleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID       string      `xml:"MedlineCitation>PMID"`
	Article    article     `xml:"MedlineCitation>Article"`
	References []articleID `xml:"PubmedData>ReferenceList>Reference>ArticleIdList>ArticleId"`
}

type article struct {
	Title    innerText   `xml:"ArticleTitle"`
	Journal  journal     `xml:"Journal"`
	Abstract []innerText `xml:"Abstract>AbstractText"`
	Authors  []author    `xml:"AuthorList>Author"`
}

type journal struct {
	Title   string  `xml:"Title"`
	PubDate pubDate `xml:"JournalIssue>PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Season      string `xml:"Season"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

// String joins the date parts with spaces, e.g. "2019 Mar 04".
func (p pubDate) String() string {
	var parts []string
	for _, s := range []string{p.Year, p.Season, p.Month, p.Day, p.MedlineDate} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

type author struct {
	LastName       string       `xml:"LastName"`
	ForeName       string       `xml:"ForeName"`
	Initials       string       `xml:"Initials"`
	CollectiveName string       `xml:"CollectiveName"`
	Identifiers    []identifier `xml:"Identifier"`
}

type identifier struct {
	Source string `xml:"Source,attr"`
	Value  string `xml:",chardata"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// linkResult is the elink response body.
type linkResult struct {
	XMLName  xml.Name  `xml:"eLinkResult"`
	LinkSets []linkSet `xml:"LinkSet"`
}

type linkSet struct {
	DBs []linkSetDB `xml:"LinkSetDb"`
}

type linkSetDB struct {
	LinkName string   `xml:"LinkName"`
	IDs      []string `xml:"Link>Id"`
}

// innerText collects all character data of an element, including text inside
// inline markup such as <i> or <sup>.
type innerText string

// UnmarshalXML implements xml.Unmarshaler.
func (t *innerText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			b.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = innerText(strings.TrimSpace(b.String()))
				return nil
			}
			depth--
		}
	}
}
