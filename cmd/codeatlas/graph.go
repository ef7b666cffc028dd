package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var (
	graphView   string
	graphModule string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Compose a graph view of the snapshot",
	Long: `Graph composes the snapshot into one of three views and prints it as
JSON: "modules" (module-level overview with cross-module edges), "files"
(per-file dependency graph, optionally narrowed to one module), or "routes"
(routes wired to handlers and the external services they reach).`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphView, "view", "modules", "View: modules, files, or routes")
	graphCmd.Flags().StringVar(&graphModule, "module", "", "Narrow the files view to one module")
}

func runGraph(cmd *cobra.Command, args []string) error {
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

	g, err := engine.ComposeGraph(graphView, graphModule)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
