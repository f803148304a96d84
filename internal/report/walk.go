package report

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
)

// Chain maps the leading n-1 words of each n-gram to weighted next words.
type Chain struct {
	n     int
	start string
	next  map[string][]successor
}

type successor struct {
	word   string
	weight int
}

// NewChain builds a chain from counted n-grams. The walk starts from the
// prefix of the most frequent n-gram.
func NewChain(entries []Entry, n int) *Chain {
	c := &Chain{n: n, next: make(map[string][]successor)}
	for _, e := range entries {
		words := strings.Fields(e.NGram)
		if len(words) != n {
			continue
		}
		prefix := strings.Join(words[:n-1], " ")
		if c.start == "" && n > 1 {
			c.start = prefix
		}
		c.next[prefix] = append(c.next[prefix], successor{word: words[n-1], weight: e.Count})
	}
	for _, s := range c.next {
		sort.Slice(s, func(i, j int) bool { return s[i].word < s[j].word })
	}
	return c
}

// Walk takes steps weighted random steps and returns the generated words.
// From a prefix, only successors that lead on to another known prefix are
// eligible; when none are, the walk restarts from the start prefix. For
// single words every step is an independent draw weighted by frequency.
// On cancellation the words generated so far are returned with ctx's error.
func (c *Chain) Walk(ctx context.Context, steps int, rng *rand.Rand) ([]string, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if len(c.next) == 0 || steps <= 0 {
		return []string{}, nil
	}

	if c.n == 1 {
		words := make([]string, 0, steps)
		for range steps {
			if err := ctx.Err(); err != nil {
				return words, err
			}
			words = append(words, pick(c.next[""], rng))
		}
		return words, nil
	}

	state := strings.Fields(c.start)
	words := append([]string{}, state...)
	restarted := false
	for len(words)-len(strings.Fields(c.start)) < steps {
		if err := ctx.Err(); err != nil {
			return words, err
		}

		choices := c.continuing(state)
		if len(choices) == 0 {
			if restarted {
				// The start prefix itself is a dead end.
				break
			}
			state = strings.Fields(c.start)
			restarted = true
			continue
		}
		restarted = false

		w := pick(choices, rng)
		words = append(words, w)
		state = append(state[1:], w)
	}
	return words, nil
}

// continuing returns the successors of state that keep the walk going.
func (c *Chain) continuing(state []string) []successor {
	var out []successor
	for _, s := range c.next[strings.Join(state, " ")] {
		nextState := append(append([]string{}, state[1:]...), s.word)
		if _, ok := c.next[strings.Join(nextState, " ")]; ok {
			out = append(out, s)
		}
	}
	return out
}

func pick(choices []successor, rng *rand.Rand) string {
	total := 0
	for _, s := range choices {
		total += s.weight
	}
	r := rng.IntN(total)
	for _, s := range choices {
		if r < s.weight {
			return s.word
		}
		r -= s.weight
	}
	return choices[len(choices)-1].word
}
