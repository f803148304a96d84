// Package similarity scores the textual overlap of two free-text fields.
package similarity

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how token overlap is measured.
type Mode int

const (
	// Weighted counts every occurrence, so tokens repeated on both sides weigh more.
	Weighted Mode = iota
	// Distinct is plain Jaccard over the sets of distinct tokens.
	Distinct
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_.]+`)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Weighted:
		return "weighted"
	case Distinct:
		return "distinct"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a configuration value. Empty selects Weighted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "weighted":
		return Weighted, nil
	case "distinct", "jaccard":
		return Distinct, nil
	default:
		return Weighted, fmt.Errorf("invalid similarity mode: %q (valid: weighted, distinct)", s)
	}
}

// Tokenize splits text into word-like runs of letters, digits, underscores and dots.
// Case is preserved.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	return wordPattern.FindAllString(text, -1)
}

// Table counts occurrences of each token.
func Table(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// Score returns the overlap of a and b in [0, 1], case-insensitively.
// Two empty texts score 0.
func Score(a, b string, mode Mode) float64 {
	ta := Table(upper(Tokenize(a)))
	tb := Table(upper(Tokenize(b)))

	if mode == Distinct {
		return distinct(ta, tb)
	}
	return weighted(ta, tb)
}

func weighted(ta, tb map[string]int) float64 {
	total := 0
	for _, n := range ta {
		total += n
	}
	for _, n := range tb {
		total += n
	}
	if total == 0 {
		return 0
	}

	shared := 0
	for tok, na := range ta {
		if nb, ok := tb[tok]; ok {
			shared += na + nb
		}
	}
	return float64(shared) / float64(total)
}

func distinct(ta, tb map[string]int) float64 {
	union := len(ta)
	intersection := 0
	for tok := range tb {
		if _, ok := ta[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func upper(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToUpper(t)
	}
	return out
}
