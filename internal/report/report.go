// Package report builds n-gram frequency reports over corpus abstracts and
// generates random text by walking the n-gram chain.
package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/similarity"
)

// DefaultWalkLength is the number of steps taken by a walk when unspecified.
const DefaultWalkLength = 100

// Entry is an n-gram and its count across the corpus.
type Entry struct {
	NGram string
	Count int
}

// ParseSize parses a report kind: words, diwords, triwords or a positive integer.
func ParseSize(kind string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "words":
		return 1, nil
	case "diwords":
		return 2, nil
	case "triwords":
		return 3, nil
	}
	n, err := strconv.Atoi(kind)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid report kind %q (valid: words, diwords, triwords or a positive integer)", kind)
	}
	return n, nil
}

// Count tallies the n-grams of every abstract, highest count first and then
// alphabetically. N-grams never span two abstracts.
func Count(corpus document.Corpus, n int) []Entry {
	if n < 1 {
		return []Entry{}
	}

	counts := make(map[string]int)
	for _, d := range corpus {
		words := similarity.Tokenize(d.Abstract)
		for i := 0; i+n <= len(words); i++ {
			counts[strings.Join(words[i:i+n], " ")]++
		}
	}

	entries := make([]Entry, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, Entry{NGram: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].NGram < entries[j].NGram
	})
	return entries
}

// WriteCounts writes one "ngram,count" line per entry.
func WriteCounts(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		fmt.Fprintf(bw, "%s,%d\n", e.NGram, e.Count)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
