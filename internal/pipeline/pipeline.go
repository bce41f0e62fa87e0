// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one search submission end to end:
// formulate, search, rank, persist. All state flows through explicit
// request and response values; there is no ambient session state.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/privylens/internal/formulate"
	"github.com/pdiddy/privylens/internal/history"
	"github.com/pdiddy/privylens/internal/metrics"
	"github.com/pdiddy/privylens/internal/provider"
	"github.com/pdiddy/privylens/internal/rank"
	"github.com/pdiddy/privylens/pkg/types"
)

// Pipeline wires the collaborators for a search submission.
type Pipeline struct {
	Formulator formulate.Formulator
	Providers  map[string]provider.Provider
	Ranker     *rank.Ranker
	Archive    *history.Archive
	Config     types.SearchConfig
}

// Request is one search submission.
type Request struct {
	// Provider selects the search index: "arxiv" or "cse".
	Provider string

	// Query is the raw user text (at most formulate.MaxQueryLen characters).
	Query string

	// Raw skips keyword formulation and searches with Query verbatim.
	Raw bool
}

// Output is the completed submission.
type Output struct {
	// Keywords is the boolean search string actually dispatched.
	Keywords string

	// Results is the ranked, scored result list, best first.
	Results []types.ScoredResult

	// Dropped counts candidates skipped because their embedding failed.
	Dropped int
}

// Run executes the full pipeline and persists the ranked results. Progress
// and per-candidate warnings go to w. An empty result set is not an error.
func (p *Pipeline) Run(ctx context.Context, req Request, w io.Writer) (Output, error) {
	prov, ok := p.Providers[req.Provider]
	if !ok {
		return Output{}, fmt.Errorf("unknown search provider %q", req.Provider)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Output{}, fmt.Errorf("query is empty")
	}
	if len(query) > formulate.MaxQueryLen {
		return Output{}, formulate.ErrQueryTooLong
	}

	keywords := query
	if !req.Raw {
		var err error
		keywords, err = p.Formulator.Formulate(ctx, query)
		if err != nil {
			metrics.SearchesTotal.WithLabelValues(req.Provider, "error").Inc()
			return Output{}, err
		}
		fmt.Fprintf(w, "keywords: %s\n", keywords)
	}

	candidates, err := prov.Search(ctx, keywords, p.Config)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(req.Provider, "error").Inc()
		return Output{}, err
	}

	// Candidates are scored against the original user text, not the
	// derived keyword string.
	results, dropped, err := p.Ranker.Rank(ctx, query, candidates, w)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(req.Provider, "error").Inc()
		return Output{}, err
	}
	if dropped > 0 {
		metrics.CandidatesDroppedTotal.WithLabelValues(req.Provider).Add(float64(dropped))
	}

	if err := p.Archive.Save(req.Provider, keywords, results); err != nil {
		metrics.SearchesTotal.WithLabelValues(req.Provider, "error").Inc()
		return Output{}, fmt.Errorf("saving results: %w", err)
	}

	metrics.SearchesTotal.WithLabelValues(req.Provider, "success").Inc()
	return Output{Keywords: keywords, Results: results, Dropped: dropped}, nil
}

// FormatResults writes a ranked result list the way the UI presents it:
// title, body excerpt, URLs, date where applicable, score to two decimals.
func FormatResults(results []types.ScoredResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	for i, r := range results {
		fmt.Fprintf(w, "Result %d: %s\n", i+1, r.Title)
		if r.Body != "" {
			fmt.Fprintf(w, "  %s\n", excerpt(r.Body, 300))
		}
		if !r.Published.IsZero() {
			fmt.Fprintf(w, "  Published: %s\n", r.Published.Format("2006-01-02"))
		}
		if r.URL != "" {
			fmt.Fprintf(w, "  URL: %s\n", r.URL)
		}
		if r.PDFURL != "" {
			fmt.Fprintf(w, "  PDF: %s\n", r.PDFURL)
		}
		fmt.Fprintf(w, "  Relatedness: %.2f\n\n", r.Relatedness)
	}
	fmt.Fprintf(w, "%d results\n", len(results))
}

func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
