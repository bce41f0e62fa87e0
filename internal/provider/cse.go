// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/pdiddy/privylens/internal/httputil"
	"github.com/pdiddy/privylens/pkg/types"
)

// cseAPIBase is the Google Custom Search endpoint. Declared as a var so
// tests can substitute an httptest server.
var cseAPIBase = "https://www.googleapis.com/customsearch/v1"

// Environment variables checked at call time; they take precedence over the
// configured credentials.
const (
	cseKeyEnv = "GOOGLE_CSE_KEY"
	cseIDEnv  = "GOOGLE_CSE_ID"
)

// CSEProvider queries the Google Custom Search JSON API.
type CSEProvider struct {
	Client *http.Client
}

// Name returns the provider identifier.
func (p *CSEProvider) Name() string { return CSEName }

// Search queries Custom Search and returns the items present in the
// response (the API's default page, no explicit page size). Credentials are
// resolved per call: environment first, then configuration.
func (p *CSEProvider) Search(ctx context.Context, keywords string, cfg types.SearchConfig) ([]types.CandidateResult, error) {
	if strings.TrimSpace(keywords) == "" {
		return nil, &Error{Provider: CSEName, Err: fmt.Errorf("empty keyword string")}
	}

	key := os.Getenv(cseKeyEnv)
	if key == "" {
		key = cfg.GoogleAPIKey
	}
	engineID := os.Getenv(cseIDEnv)
	if engineID == "" {
		engineID = cfg.GoogleEngineID
	}
	if key == "" || engineID == "" {
		return nil, &Error{Provider: CSEName, Err: fmt.Errorf("missing credentials: set %s and %s", cseKeyEnv, cseIDEnv)}
	}

	params := url.Values{
		"q":   {keywords},
		"key": {key},
		"cx":  {engineID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cseAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: CSEName, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, &Error{Provider: CSEName, Err: fmt.Errorf("API request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: CSEName, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	var cr cseResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &Error{Provider: CSEName, Err: fmt.Errorf("parsing response: %w", err)}
	}

	var results []types.CandidateResult
	for _, item := range cr.Items {
		results = append(results, types.CandidateResult{
			Title:  item.Title,
			Body:   item.Snippet,
			URL:    item.Link,
			Source: CSEName,
		})
	}
	return results, nil
}

// Custom Search API JSON structures.
type cseResponse struct {
	Items []cseItem `json:"items"`
}

type cseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
