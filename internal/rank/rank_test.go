// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/privylens/pkg/types"
)

// --- mock embedder ---

// mockEmbedder maps text to fixed vectors. Texts listed in fail return an
// embedding error.
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64
	fail    map[string]bool
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fail[text] {
		return nil, errors.New("embedding service unreachable")
	}
	v, ok := m.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func candidate(title, body string) types.CandidateResult {
	return types.CandidateResult{Title: title, Body: body, Source: "arxiv"}
}

func TestRankOrdersByDescendingScore(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float64{
		"query": {1, 0},
		"a":     {1, 0},
		"b":     {0, 1},
		"c":     {0.5, 0.5},
	}}
	r := NewRanker(emb, 2)

	candidates := []types.CandidateResult{
		candidate("B", "b"),
		candidate("A", "a"),
		candidate("C", "c"),
	}

	var buf bytes.Buffer
	results, dropped, err := r.Rank(context.Background(), "query", candidates, &buf)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if !sort.SliceIsSorted(results, func(i, j int) bool {
		return results[i].Relatedness > results[j].Relatedness
	}) {
		t.Errorf("results not sorted descending: %+v", results)
	}

	// Output is a permutation of the input: no drops, no duplicates.
	seen := map[string]int{}
	for _, res := range results {
		seen[res.Title]++
	}
	for _, title := range []string{"A", "B", "C"} {
		if seen[title] != 1 {
			t.Errorf("title %q appears %d times, want 1", title, seen[title])
		}
	}

	if results[0].Title != "A" {
		t.Errorf("top result = %q, want A", results[0].Title)
	}
	if math.Abs(results[0].Relatedness-1.0) > 1e-9 {
		t.Errorf("top score = %v, want 1.0", results[0].Relatedness)
	}
	if results[len(results)-1].Title != "B" {
		t.Errorf("bottom result = %q, want B", results[len(results)-1].Title)
	}
	if math.Abs(results[len(results)-1].Relatedness) > 1e-9 {
		t.Errorf("bottom score = %v, want 0.0", results[len(results)-1].Relatedness)
	}
}

func TestRankDropsFailedCandidates(t *testing.T) {
	emb := &mockEmbedder{
		vectors: map[string][]float64{
			"query": {1, 0},
			"ok1":   {1, 0},
			"ok2":   {0, 1},
		},
		fail: map[string]bool{"bad1": true, "bad2": true},
	}
	r := NewRanker(emb, 4)

	candidates := []types.CandidateResult{
		candidate("OK1", "ok1"),
		candidate("Bad1", "bad1"),
		candidate("OK2", "ok2"),
		candidate("Bad2", "bad2"),
	}

	var buf bytes.Buffer
	results, dropped, err := r.Rank(context.Background(), "query", candidates, &buf)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}

	// 2 of 4 failed embedding: exactly 2 scored results remain.
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for _, res := range results {
		if strings.HasPrefix(res.Title, "Bad") {
			t.Errorf("failed candidate %q survived ranking", res.Title)
		}
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Errorf("expected dropped-candidate warnings in output, got %q", buf.String())
	}
}

func TestRankQueryEmbeddingFailureIsFatal(t *testing.T) {
	emb := &mockEmbedder{
		vectors: map[string][]float64{"a": {1, 0}},
		fail:    map[string]bool{"query": true},
	}
	r := NewRanker(emb, 2)

	var buf bytes.Buffer
	results, dropped, err := r.Rank(context.Background(), "query",
		[]types.CandidateResult{candidate("A", "a")}, &buf)

	// No comparison baseline: fail fast with no partial output.
	if err == nil {
		t.Fatal("expected error when query embedding fails")
	}
	if results != nil {
		t.Errorf("results = %+v, want nil", results)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	// The query embed is the only call made.
	if emb.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", emb.calls)
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float64{"query": {1, 0}}}
	r := NewRanker(emb, 2)

	var buf bytes.Buffer
	results, dropped, err := r.Rank(context.Background(), "query", nil, &buf)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(results) != 0 || dropped != 0 {
		t.Errorf("got %d results, %d dropped; want empty", len(results), dropped)
	}
}

func TestRankAllCandidatesFail(t *testing.T) {
	emb := &mockEmbedder{
		vectors: map[string][]float64{"query": {1, 0}},
		fail:    map[string]bool{"x": true, "y": true},
	}
	r := NewRanker(emb, 2)

	var buf bytes.Buffer
	results, dropped, err := r.Rank(context.Background(), "query",
		[]types.CandidateResult{candidate("X", "x"), candidate("Y", "y")}, &buf)

	// All candidates failing is an empty result, not an error.
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestRankDimensionMismatchDropsCandidate(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float64{
		"query": {1, 0},
		"good":  {0, 1},
		"short": {1},
	}}
	r := NewRanker(emb, 2)

	var buf bytes.Buffer
	results, dropped, err := r.Rank(context.Background(), "query",
		[]types.CandidateResult{candidate("Good", "good"), candidate("Short", "short")}, &buf)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(results) != 1 || results[0].Title != "Good" {
		t.Errorf("results = %+v, want only Good", results)
	}
}
