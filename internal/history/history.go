// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists ranked result sets as one flat file per
// (provider, keyword string) pair and keeps a catalog of saved searches.
// Saving the same pair again overwrites the previous file in full.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/privylens/internal/provider"
	"github.com/pdiddy/privylens/pkg/types"
)

// ErrNotFound is reported when a saved search does not exist. Deleting a
// missing search is a non-fatal condition, not a crash.
var ErrNotFound = errors.New("saved search not found")

const (
	fileExt      = ".csv"
	catalogDir   = "index"
	publishedFmt = "2006-01-02"
)

// Archive stores saved searches under baseDir/<provider>/<keywords>.csv and
// catalogs them in baseDir/index/history.db.
type Archive struct {
	baseDir string
	catalog *catalog
}

// NewArchive opens or creates the archive rooted at baseDir.
func NewArchive(baseDir string) (*Archive, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	cat, err := openCatalog(filepath.Join(baseDir, catalogDir))
	if err != nil {
		return nil, err
	}
	return &Archive{baseDir: baseDir, catalog: cat}, nil
}

// Close releases the catalog database.
func (a *Archive) Close() error {
	return a.catalog.close()
}

// Save writes the ranked results for (providerName, keywords), replacing any
// previous file for the same pair, and upserts the catalog entry.
func (a *Archive) Save(providerName, keywords string, results []types.ScoredResult) error {
	dir := filepath.Join(a.baseDir, providerName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating provider directory: %w", err)
	}

	path := a.path(providerName, keywords)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating saved search file: %w", err)
	}

	w := csv.NewWriter(f)
	for _, r := range results {
		if err := w.Write(rowFor(providerName, r)); err != nil {
			f.Close()
			return fmt.Errorf("writing saved search row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing saved search file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing saved search file: %w", err)
	}

	topScore := 0.0
	if len(results) > 0 {
		topScore = results[0].Relatedness
	}
	return a.catalog.record(Entry{
		Provider: providerName,
		Keywords: keywords,
		File:     filepath.Base(path),
		Results:  len(results),
		TopScore: topScore,
		SavedAt:  time.Now().UTC(),
	})
}

// Load reads the saved results for (providerName, keywords) back in
// descending score order. The on-disk order is already descending, but Load
// re-sorts by the score column as a defensive measure.
func (a *Archive) Load(providerName, keywords string) ([]types.ScoredResult, error) {
	path := a.path(providerName, keywords)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, providerName, keywords)
		}
		return nil, fmt.Errorf("opening saved search: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading saved search: %w", err)
	}

	results := make([]types.ScoredResult, 0, len(records))
	for i, rec := range records {
		sr, err := rowTo(providerName, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		results = append(results, sr)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relatedness > results[j].Relatedness
	})
	return results, nil
}

// Delete removes the saved search and its catalog entry. Deleting a missing
// search returns ErrNotFound; the catalog row is still cleaned up so the
// entry is not listed again.
func (a *Archive) Delete(providerName, keywords string) error {
	err := os.Remove(a.path(providerName, keywords))
	if catErr := a.catalog.remove(providerName, keywords); catErr != nil {
		return catErr
	}
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, providerName, keywords)
		}
		return fmt.Errorf("deleting saved search: %w", err)
	}
	return nil
}

// List returns the catalog entries for one provider, most recent first.
// An empty providerName lists every provider.
func (a *Archive) List(providerName string) ([]Entry, error) {
	return a.catalog.list(providerName)
}

// ListGrouped returns catalog entries grouped by provider in UI order.
func (a *Archive) ListGrouped() (map[string][]Entry, error) {
	entries, err := a.catalog.list("")
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]Entry)
	for _, e := range entries {
		grouped[e.Provider] = append(grouped[e.Provider], e)
	}
	return grouped, nil
}

func (a *Archive) path(providerName, keywords string) string {
	return filepath.Join(a.baseDir, providerName, sanitizeKeywords(keywords)+fileExt)
}

// rowFor projects a scored result into the provider's fixed column order.
// arXiv rows carry an extra date column; the score is always last.
func rowFor(providerName string, r types.ScoredResult) []string {
	score := strconv.FormatFloat(r.Relatedness, 'f', -1, 64)
	if providerName == provider.ArxivName {
		published := ""
		if !r.Published.IsZero() {
			published = r.Published.Format(publishedFmt)
		}
		return []string{r.Title, r.Body, published, r.PDFURL, score}
	}
	return []string{r.Title, r.Body, r.URL, score}
}

// rowTo parses one persisted row back into a scored result.
func rowTo(providerName string, rec []string) (types.ScoredResult, error) {
	var sr types.ScoredResult
	sr.Source = providerName

	switch providerName {
	case provider.ArxivName:
		if len(rec) != 5 {
			return sr, fmt.Errorf("malformed arxiv row: %d columns", len(rec))
		}
		sr.Title, sr.Body, sr.PDFURL = rec[0], rec[1], rec[3]
		if rec[2] != "" {
			if t, err := time.Parse(publishedFmt, rec[2]); err == nil {
				sr.Published = t
			}
		}
	default:
		if len(rec) != 4 {
			return sr, fmt.Errorf("malformed %s row: %d columns", providerName, len(rec))
		}
		sr.Title, sr.Body, sr.URL = rec[0], rec[1], rec[2]
	}

	score, err := strconv.ParseFloat(rec[len(rec)-1], 64)
	if err != nil {
		return sr, fmt.Errorf("parsing score %q: %w", rec[len(rec)-1], err)
	}
	sr.Relatedness = score
	return sr, nil
}

// sanitizeKeywords maps a keyword string onto a filesystem-safe name.
// Distinct keyword strings can collide after sanitization; the last save
// wins, matching the overwrite semantics of the key itself.
func sanitizeKeywords(keywords string) string {
	var b strings.Builder
	for _, r := range keywords {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|' || r == 0:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		name = "_"
	}
	const maxName = 150
	if len(name) > maxName {
		name = name[:maxName]
	}
	return name
}
