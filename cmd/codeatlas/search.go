package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search files, exports, routes, and pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	result, err := engine.Search(args[0])
	if err != nil {
		return err
	}

	if searchJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	for _, h := range result.Hits {
		if h.File != "" {
			fmt.Printf("%-6s %-40s (%s)\n", h.Kind, h.Path, h.File)
		} else {
			fmt.Printf("%-6s %s\n", h.Kind, h.Path)
		}
	}
	if result.Total > len(result.Hits) {
		fmt.Printf("\n%d of %d matches shown\n", len(result.Hits), result.Total)
	} else {
		fmt.Printf("\n%d matches\n", result.Total)
	}
	return nil
}
