// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/privylens/internal/pipeline"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an index and rank results by relatedness",
	Long: `Search derives a boolean keyword string from the query via the configured
language model, dispatches it to the selected engine (arXiv or Google Custom
Search), ranks the candidates by embedding relatedness to the original query,
prints them best first, and saves the ranked set for later reloading.

Use --raw to skip keyword generation and search with the query verbatim.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	engine, _ := cmd.Flags().GetString("engine")
	raw, _ := cmd.Flags().GetBool("raw")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	if maxResults > 0 {
		cfg.Search.MaxResults = maxResults
	}

	p, archive, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	out, err := p.Run(context.Background(), pipeline.Request{
		Provider: engine,
		Query:    query,
		Raw:      raw,
	}, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Results)
	}

	fmt.Printf("%s results: %s\n\n", engine, out.Keywords)
	pipeline.FormatResults(out.Results, os.Stdout)
	if out.Dropped > 0 {
		fmt.Fprintf(os.Stderr, "%d candidate(s) skipped: embedding failed\n", out.Dropped)
	}
	return nil
}

func init() {
	searchCmd.Flags().String("query", "", "free-text research question (max 500 characters)")
	searchCmd.Flags().String("engine", "arxiv", "search engine: arxiv or cse")
	searchCmd.Flags().Bool("raw", false, "skip keyword generation, search with the query verbatim")
	searchCmd.Flags().Int("max-results", 0, "candidates to request from arXiv (0 = default 10)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
