// Package frontier proposes the next identifiers to fetch when growing a corpus.
package frontier

import (
	"math/rand/v2"
	"sort"

	"github.com/citegraph/gref/internal/document"
)

// DefaultBatchSize is the number of identifiers proposed per grow cycle.
const DefaultBatchSize = 5

// Candidate is an identifier linked from the corpus but not yet fetched.
type Candidate struct {
	ID            string `json:"id"`
	IncomingCount int    `json:"incoming_count"`
}

// Candidates counts how often each identifier appears across the references,
// citedIn and related lists of every document, excluding identifiers already
// in the corpus. Documents without link data contribute nothing.
// The result is sorted by count descending, then ID.
func Candidates(corpus document.Corpus) []Candidate {
	counts := make(map[string]int)
	for _, d := range corpus {
		for _, links := range [][]string{d.References, d.CitedIn, d.Related} {
			for _, id := range links {
				counts[id]++
			}
		}
	}

	candidates := make([]Candidate, 0, len(counts))
	for id, n := range counts {
		if corpus.Has(id) {
			continue
		}
		candidates = append(candidates, Candidate{ID: id, IncomingCount: n})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].IncomingCount != candidates[j].IncomingCount {
			return candidates[i].IncomingCount > candidates[j].IncomingCount
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}

// Select returns up to batchSize candidate identifiers, highest incoming count
// first. Candidates with equal counts are ordered by a random value drawn
// fresh per candidate per call from rng; a nil rng uses a randomly seeded source.
// Select does not modify the corpus.
func Select(corpus document.Corpus, batchSize int, rng *rand.Rand) []string {
	if batchSize <= 0 {
		return []string{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	type ranked struct {
		Candidate
		tiebreak float64
	}

	candidates := Candidates(corpus)
	ranks := make([]ranked, len(candidates))
	for i, c := range candidates {
		ranks[i] = ranked{Candidate: c, tiebreak: rng.Float64()}
	}

	sort.Slice(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.IncomingCount != b.IncomingCount {
			return a.IncomingCount > b.IncomingCount
		}
		if a.tiebreak != b.tiebreak {
			return a.tiebreak > b.tiebreak
		}
		return a.ID < b.ID
	})

	n := min(batchSize, len(ranks))
	ids := make([]string, n)
	for i := range n {
		ids[i] = ranks[i].ID
	}
	return ids
}
