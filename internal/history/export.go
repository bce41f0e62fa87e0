// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest is a self-describing snapshot of the archive: named fields
// instead of the positional CSV columns, one section per saved search.
type Manifest struct {
	GeneratedAt time.Time       `yaml:"generated_at"`
	Searches    []ManifestEntry `yaml:"searches"`
}

// ManifestEntry holds one saved search with its full result rows.
type ManifestEntry struct {
	Provider string           `yaml:"provider"`
	Keywords string           `yaml:"keywords"`
	SavedAt  time.Time        `yaml:"saved_at"`
	Results  []ManifestResult `yaml:"results"`
}

// ManifestResult mirrors the persisted row with named fields.
type ManifestResult struct {
	Title       string  `yaml:"title"`
	Body        string  `yaml:"body"`
	URL         string  `yaml:"url,omitempty"`
	PDFURL      string  `yaml:"pdf_url,omitempty"`
	Published   string  `yaml:"published,omitempty"`
	Relatedness float64 `yaml:"relatedness_score"`
}

// ExportYAML writes a manifest of every saved search to path. Searches whose
// file has gone missing are skipped.
func (a *Archive) ExportYAML(path string) error {
	entries, err := a.catalog.list("")
	if err != nil {
		return err
	}

	m := Manifest{GeneratedAt: time.Now().UTC()}
	for _, e := range entries {
		results, err := a.Load(e.Provider, e.Keywords)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return fmt.Errorf("loading %s/%s: %w", e.Provider, e.Keywords, err)
		}

		me := ManifestEntry{
			Provider: e.Provider,
			Keywords: e.Keywords,
			SavedAt:  e.SavedAt,
		}
		for _, r := range results {
			mr := ManifestResult{
				Title:       r.Title,
				Body:        r.Body,
				URL:         r.URL,
				PDFURL:      r.PDFURL,
				Relatedness: r.Relatedness,
			}
			if !r.Published.IsZero() {
				mr.Published = r.Published.Format(publishedFmt)
			}
			me.Results = append(me.Results, mr)
		}
		m.Searches = append(m.Searches, me)
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
