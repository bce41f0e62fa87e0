// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider queries external search APIs and returns raw candidate
// documents for a keyword string. Each provider implements the Provider
// interface per the Strategy pattern; both report failures through the same
// typed Error so the orchestration layer owns presentation.
package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/privylens/pkg/types"
)

// Provider names double as the saved-search directory names.
const (
	ArxivName = "arxiv"
	CSEName   = "cse"
)

// Provider searches a single external index.
type Provider interface {
	Name() string
	Search(ctx context.Context, keywords string, cfg types.SearchConfig) ([]types.CandidateResult, error)
}

// Error is a typed provider failure. StatusCode is zero for transport and
// configuration errors.
type Error struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying at a later time
// (rate limiting or a server-side fault).
func (e *Error) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ByName returns the provider registered under name.
func ByName(name string, client *http.Client) (Provider, error) {
	switch name {
	case ArxivName:
		return &ArxivProvider{Client: client}, nil
	case CSEName:
		return &CSEProvider{Client: client}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", name)
	}
}

// Names lists the available provider names in UI order.
func Names() []string {
	return []string{ArxivName, CSEName}
}
