// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/privylens/internal/history"
	"github.com/pdiddy/privylens/internal/pipeline"
	"github.com/pdiddy/privylens/internal/provider"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, reload, delete, and export saved searches",
	Long: `History manages the saved-search archive. Every search saves its ranked
result set to a per-query file; use subcommands to list them, print one
without re-searching, delete one, or export the whole archive to YAML.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches grouped by provider",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	grouped, err := archive.ListGrouped()
	if err != nil {
		return err
	}
	if len(grouped) == 0 {
		fmt.Println("No saved searches.")
		return nil
	}

	for _, name := range provider.Names() {
		entries := grouped[name]
		if len(entries) == 0 {
			continue
		}
		fmt.Printf("%s:\n", name)
		for _, e := range entries {
			fmt.Printf("  %-50s  %3d results  top %.2f  %s\n",
				truncateKeywords(e.Keywords), e.Results, e.TopScore,
				e.SavedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [keywords]",
	Short: "Print a saved search without re-searching",
	Long: `Show reads a saved result set back from disk in its stored descending
score order. Nothing is recomputed; the keywords must match a saved search
exactly (see "history list").`,
	RunE: runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	engine, _ := cmd.Flags().GetString("engine")
	keywords := strings.Join(args, " ")
	if keywords == "" {
		return fmt.Errorf("keywords required: privylens history show --engine %s \"<keywords>\"", engine)
	}

	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	results, err := archive.Load(engine, keywords)
	if err != nil {
		return err
	}

	fmt.Printf("%s results: %s\n\n", engine, keywords)
	pipeline.FormatResults(results, os.Stdout)
	return nil
}

// --- delete subcommand ---

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [keywords]",
	Short: "Delete a saved search",
	Long: `Delete removes a saved search file and its catalog entry. Deleting a
search that does not exist prints a warning and exits successfully.`,
	RunE: runHistoryDelete,
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	engine, _ := cmd.Flags().GetString("engine")
	keywords := strings.Join(args, " ")
	if keywords == "" {
		return fmt.Errorf("keywords required: privylens history delete --engine %s \"<keywords>\"", engine)
	}

	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.Delete(engine, keywords); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "warning: not found: %s/%s\n", engine, keywords)
			return nil
		}
		return err
	}
	fmt.Printf("Deleted: %s/%s\n", engine, keywords)
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the archive to a self-describing YAML manifest",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.ExportYAML(out); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", out)
	return nil
}

// --- shared helpers ---

func openArchive() (*history.Archive, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}
	return history.NewArchive(cfg.History.BaseDir)
}

func truncateKeywords(s string) string {
	if len(s) <= 50 {
		return s
	}
	return s[:47] + "..."
}

func init() {
	historyShowCmd.Flags().String("engine", "arxiv", "search engine: arxiv or cse")
	historyDeleteCmd.Flags().String("engine", "arxiv", "search engine: arxiv or cse")
	historyExportCmd.Flags().String("out", "searches.yaml", "output path for the YAML manifest")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
