package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	routesJSON bool
	pagesJSON  bool
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List discovered API routes",
	RunE:  runRoutes,
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List discovered pages",
	RunE:  runPages,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(pagesCmd)
	routesCmd.Flags().BoolVar(&routesJSON, "json", false, "Output JSON")
	pagesCmd.Flags().BoolVar(&pagesJSON, "json", false, "Output JSON")
}

func runRoutes(cmd *cobra.Command, args []string) error {
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

	routes, err := engine.ListRoutes()
	if err != nil {
		return err
	}

	if routesJSON {
		return json.NewEncoder(os.Stdout).Encode(routes)
	}

	for _, r := range routes {
		fmt.Printf("%-20s %-30s %s\n", strings.Join(r.Methods, ","), r.Path, r.File)
	}
	fmt.Printf("\n%d routes\n", len(routes))
	return nil
}

func runPages(cmd *cobra.Command, args []string) error {
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

	pages, err := engine.ListPages()
	if err != nil {
		return err
	}

	if pagesJSON {
		return json.NewEncoder(os.Stdout).Encode(pages)
	}

	for _, p := range pages {
		fmt.Printf("%-30s %s\n", p.Path, p.File)
	}
	fmt.Printf("\n%d pages\n", len(pages))
	return nil
}
