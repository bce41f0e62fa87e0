// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/privylens/internal/embedding"
	"github.com/pdiddy/privylens/pkg/types"
)

const defaultPoolSize = 4

// Ranker embeds candidates and orders them by relatedness to the query.
type Ranker struct {
	embedder embedding.Embedder
	poolSize int
}

// NewRanker returns a Ranker that issues at most poolSize concurrent
// embedding requests. poolSize <= 0 selects the default (4).
func NewRanker(e embedding.Embedder, poolSize int) *Ranker {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	return &Ranker{embedder: e, poolSize: poolSize}
}

// Rank embeds the query and every candidate's body text, scores each
// candidate against the query embedding, and returns the survivors sorted by
// descending relatedness (stable, so ties keep provider order). Candidates
// whose embedding fails are dropped with a warning on w; the second return
// value is the number dropped. An empty candidate list is not an error.
//
// If the query itself fails to embed there is no comparison baseline, so
// Rank fails fast and produces no partial output.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []types.CandidateResult, w io.Writer) ([]types.ScoredResult, int, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("embedding query: %w", err)
	}

	if len(candidates) == 0 {
		return nil, 0, nil
	}

	pool, err := ants.NewPool(r.poolSize)
	if err != nil {
		return nil, 0, fmt.Errorf("creating embedding pool: %w", err)
	}
	defer pool.Release()

	// Dropped candidates leave a nil slot; slots keep provider order until
	// the final sort.
	scored := make([]*types.ScoredResult, len(candidates))

	var wg sync.WaitGroup
	var mu sync.Mutex // guards w

	for i := range candidates {
		i := i
		c := candidates[i]
		wg.Add(1)
		task := func() {
			defer wg.Done()

			vec, embErr := r.embedder.Embed(ctx, c.Body)
			if embErr != nil {
				mu.Lock()
				fmt.Fprintf(w, "warning: skipping %q: %v\n", c.Title, embErr)
				mu.Unlock()
				return
			}

			score, scoreErr := Relatedness(queryVec, vec)
			if scoreErr != nil {
				mu.Lock()
				fmt.Fprintf(w, "warning: skipping %q: %v\n", c.Title, scoreErr)
				mu.Unlock()
				return
			}

			scored[i] = &types.ScoredResult{CandidateResult: c, Relatedness: score}
		}
		if submitErr := pool.Submit(task); submitErr != nil {
			wg.Done()
			return nil, 0, fmt.Errorf("submitting embedding task: %w", submitErr)
		}
	}
	wg.Wait()

	results := make([]types.ScoredResult, 0, len(candidates))
	dropped := 0
	for _, s := range scored {
		if s == nil {
			dropped++
			continue
		}
		results = append(results, *s)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relatedness > results[j].Relatedness
	})

	return results, dropped, nil
}
