package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"codeatlas/internal/analysis"
	"codeatlas/internal/model"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot summary statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output JSON")
}

// ensureSnapshot makes sure the store has a snapshot to query, scanning the
// repo when neither memory nor disk has one.
func ensureSnapshot(store *analysis.Store, repoRoot string) error {
	if store.Current() != nil {
		return nil
	}
	_, err := store.Scan(context.Background(), repoRoot, "")
	return err
}

func runStats(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}
	engine, store, _, _, err := buildEngine(repoRoot)
	if err != nil {
		return err
	}
	if err := ensureSnapshot(store, repoRoot); err != nil {
		return err
	}

	stats, err := engine.GetStats()
	if err != nil {
		return err
	}

	if statsJSON {
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	fmt.Printf("Files:             %d\n", stats.TotalFiles)
	fmt.Printf("Lines:             %d\n", stats.TotalLines)
	fmt.Printf("Functions:         %d\n", stats.TotalFunctions)
	fmt.Printf("Components:        %d\n", stats.TotalComponents)
	fmt.Printf("API routes:        %d\n", stats.TotalAPIRoutes)
	fmt.Printf("Pages:             %d\n", stats.TotalPages)
	fmt.Printf("External services: %d\n", stats.TotalExternalServices)

	fmt.Println("\nBy type:")
	for _, t := range model.FileTypes {
		if n := stats.FileTypes[t]; n > 0 {
			fmt.Printf("  %-10s %d\n", t, n)
		}
	}
	return nil
}
