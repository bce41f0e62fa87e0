// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/privylens/internal/httputil"
	"github.com/pdiddy/privylens/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivPageSize is the fixed candidate page requested from arXiv.
const arxivPageSize = 10

// ArxivProvider queries the arXiv Atom API.
type ArxivProvider struct {
	Client *http.Client
}

// Name returns the provider identifier.
func (p *ArxivProvider) Name() string { return ArxivName }

// Search queries arXiv with the boolean keyword string and returns up to
// one page of candidates. The keyword string is passed through in the "all"
// field, so AND/OR/NOT and quoted phrases reach the API unchanged.
func (p *ArxivProvider) Search(ctx context.Context, keywords string, cfg types.SearchConfig) ([]types.CandidateResult, error) {
	if strings.TrimSpace(keywords) == "" {
		return nil, &Error{Provider: ArxivName, Err: fmt.Errorf("empty keyword string")}
	}

	pageSize := cfg.MaxResults
	if pageSize <= 0 {
		pageSize = arxivPageSize
	}

	params := url.Values{
		"search_query": {"all:" + keywords},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", pageSize)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: ArxivName, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, &Error{Provider: ArxivName, Err: fmt.Errorf("API request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: ArxivName, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &Error{Provider: ArxivName, Err: fmt.Errorf("parsing response: %w", err)}
	}

	var results []types.CandidateResult
	for _, entry := range feed.Entries {
		c := types.CandidateResult{
			Title:  strings.Join(strings.Fields(entry.Title), " "),
			Body:   strings.TrimSpace(entry.Summary),
			Source: ArxivName,
		}

		for _, l := range entry.Links {
			switch {
			case l.Title == "pdf":
				c.PDFURL = l.Href
			case l.Rel == "alternate" || c.URL == "":
				c.URL = l.Href
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			c.Published = t
		}

		results = append(results, c)
	}
	return results, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Summary   string      `xml:"summary"`
	Published string      `xml:"published"`
	Links     []arxivLink `xml:"link"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}
