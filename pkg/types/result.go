// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the privylens pipeline.
package types

import "time"

// CandidateResult is the raw metadata for one document returned by a search
// provider before scoring. It lives in memory for the duration of a single
// ranking pass; only its scored projection is persisted.
type CandidateResult struct {
	// Title is the document title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Body is the text used for embedding: the paper abstract for arXiv
	// results, the result snippet for web search results. Titles are never
	// embedded.
	Body string `json:"body" yaml:"body"`

	// URL is the document or result link.
	URL string `json:"url" yaml:"url"`

	// PDFURL is the direct PDF link. Only set for arXiv results.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Published is the publication date. Only set for arXiv results.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// Source identifies the provider that returned this result
	// (e.g. "arxiv", "cse").
	Source string `json:"source" yaml:"source"`
}

// ScoredResult is a candidate plus its relatedness to the query embedding.
// A ranked sequence is ordered by descending Relatedness; ties keep their
// provider order.
type ScoredResult struct {
	CandidateResult `yaml:",inline"`

	// Relatedness is the cosine similarity between the query embedding and
	// the candidate's body embedding. Effectively in [0, 1] for normalized
	// embeddings.
	Relatedness float64 `json:"relatedness_score" yaml:"relatedness_score"`
}
