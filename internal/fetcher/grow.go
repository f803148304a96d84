package fetcher

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/frontier"
)

// CycleReport describes one completed grow cycle.
type CycleReport struct {
	Cycle    int      // 1-based cycle number
	Selected []string // Frontier identifiers requested this cycle
	Result   Result
	Size     int // Corpus size after the merge
}

// GrowResult summarizes a Grow call.
type GrowResult struct {
	Cycles    int      // Cycles that ran to completion
	Added     []string // Identifiers merged across all cycles
	Exhausted bool     // The frontier ran empty before all cycles ran
}

// Grow runs cycles rounds of frontier selection followed by Add. Each round
// selects from the corpus as left by the previous one. onCycle, if non-nil,
// is called after every completed round.
//
// An empty frontier ends growth early without error. Cancellation ends growth
// after merging whatever the in-flight round finished; earlier rounds stay merged.
func (f *Fetcher) Grow(ctx context.Context, corpus document.Corpus, cycles, batchSize int, rng *rand.Rand, onCycle func(CycleReport)) (GrowResult, error) {
	var res GrowResult
	if batchSize <= 0 {
		batchSize = frontier.DefaultBatchSize
	}

	for cycle := 1; cycle <= cycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("grow cycle %d: %w", cycle, err)
		}

		ids := frontier.Select(corpus, batchSize, rng)
		if len(ids) == 0 {
			f.logger.Info("Frontier is empty", "cycle", cycle)
			res.Exhausted = true
			return res, nil
		}

		f.logger.Debug("Growing corpus", "cycle", cycle, "of", cycles, "ids", ids)
		added, err := f.Add(ctx, corpus, ids)
		res.Added = append(res.Added, added.Added...)
		if err != nil {
			return res, fmt.Errorf("grow cycle %d: %w", cycle, err)
		}

		res.Cycles++
		if onCycle != nil {
			onCycle(CycleReport{Cycle: cycle, Selected: ids, Result: added, Size: len(corpus)})
		}
	}

	return res, nil
}
