// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const catalogFile = "history.db"

// Entry is one catalog row describing a saved search.
type Entry struct {
	Provider string
	Keywords string
	File     string
	Results  int
	TopScore float64
	SavedAt  time.Time
}

// catalog records saved searches in a SQLite database so listing does not
// depend on directory scans or filename round-tripping.
type catalog struct {
	db *sql.DB
}

func openCatalog(dir string) (*catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, catalogFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	c := &catalog{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return c, nil
}

func (c *catalog) close() error {
	return c.db.Close()
}

func (c *catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			provider TEXT NOT NULL,
			keywords TEXT NOT NULL,
			file TEXT NOT NULL,
			result_count INTEGER NOT NULL,
			top_score REAL NOT NULL,
			saved_at TEXT NOT NULL,
			PRIMARY KEY (provider, keywords)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_provider ON searches(provider)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// record upserts the catalog row for (provider, keywords).
func (c *catalog) record(e Entry) error {
	_, err := c.db.Exec(
		`INSERT INTO searches (provider, keywords, file, result_count, top_score, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(provider, keywords) DO UPDATE SET
			file=excluded.file, result_count=excluded.result_count,
			top_score=excluded.top_score, saved_at=excluded.saved_at`,
		e.Provider, e.Keywords, e.File, e.Results, e.TopScore,
		e.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording saved search: %w", err)
	}
	return nil
}

// remove deletes the catalog row if present. Removing an absent row is not
// an error.
func (c *catalog) remove(provider, keywords string) error {
	_, err := c.db.Exec(
		`DELETE FROM searches WHERE provider = ? AND keywords = ?`,
		provider, keywords,
	)
	if err != nil {
		return fmt.Errorf("removing catalog entry: %w", err)
	}
	return nil
}

// list returns entries for one provider, or all providers when provider is
// empty, most recent first.
func (c *catalog) list(provider string) ([]Entry, error) {
	query := `SELECT provider, keywords, file, result_count, top_score, saved_at
		FROM searches`
	args := []any{}
	if provider != "" {
		query += ` WHERE provider = ?`
		args = append(args, provider)
	}
	query += ` ORDER BY saved_at DESC`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing saved searches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var savedAt string
		if err := rows.Scan(&e.Provider, &e.Keywords, &e.File, &e.Results, &e.TopScore, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, savedAt); parseErr == nil {
			e.SavedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
