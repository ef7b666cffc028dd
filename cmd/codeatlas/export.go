package main

import (
	"encoding/json"
	"fmt"
	"os"

	"codeatlas/internal/errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full snapshot as JSON or YAML",
	Long: `Export writes the complete current snapshot, including files, edges,
routes, pages, modules, and service usage, to stdout or a file. Useful for
feeding the model into other tools or diffing two scans.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}
	_, store, _, _, err := buildEngine(repoRoot)
	if err != nil {
		return err
	}
	if err := ensureSnapshot(store, repoRoot); err != nil {
		return err
	}

	snap := store.Current()

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return err
		}
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		if err := enc.Encode(snap); err != nil {
			return err
		}
	default:
		return errors.New(errors.InvalidArgument, "format must be json or yaml")
	}

	if exportOut != "" {
		fmt.Printf("Exported snapshot %s to %s\n", snap.ID, exportOut)
	}
	return nil
}
