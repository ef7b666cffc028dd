package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	filesType  string
	filesQuery string
	filesJSON  bool
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List analyzed files",
	RunE:  runFiles,
}

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Show one file with its dependencies and dependents",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

func init() {
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(fileCmd)
	filesCmd.Flags().StringVar(&filesType, "type", "", "Filter by file type (page, api_route, component, hook, utility, config, schema, test, other)")
	filesCmd.Flags().StringVar(&filesQuery, "match", "", "Filter by path substring")
	filesCmd.Flags().BoolVar(&filesJSON, "json", false, "Output JSON")
}

func runFiles(cmd *cobra.Command, args []string) error {
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

	files, err := engine.ListFiles(filesType, filesQuery)
	if err != nil {
		return err
	}

	if filesJSON {
		return json.NewEncoder(os.Stdout).Encode(files)
	}

	for _, f := range files {
		fmt.Printf("%-10s %6d  %s\n", f.Type, f.Lines, f.Path)
	}
	fmt.Printf("\n%d files\n", len(files))
	return nil
}

func runFile(cmd *cobra.Command, args []string) error {
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

	detail, err := engine.GetFile(args[0])
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(detail)
}
