package main

import (
	"context"
	"fmt"

	"codeatlas/internal/logging"

	"github.com/spf13/cobra"
)

var scanSubdir string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the repository and build a fresh snapshot",
	Long: `Scan walks the repository, extracts exports, imports, and external
service usage from every source file, classifies each file, resolves the
dependency graph, and aggregates modules. The resulting snapshot replaces
the previous one atomically and is persisted under .codeatlas/.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanSubdir, "subdir", "", "Restrict the scan to a subdirectory")
}

func runScan(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}

	store, _, logger, err := buildStore(repoRoot)
	if err != nil {
		return err
	}

	snap, err := store.Scan(context.Background(), repoRoot, scanSubdir)
	if err != nil {
		logger.Error("scan failed", logging.Fields{"error": err.Error()})
		return err
	}

	fmt.Printf("Scanned %s\n", snap.Root)
	fmt.Printf("  files:    %d\n", snap.Stats.TotalFiles)
	fmt.Printf("  lines:    %d\n", snap.Stats.TotalLines)
	fmt.Printf("  modules:  %d\n", len(snap.Modules))
	fmt.Printf("  routes:   %d\n", len(snap.ApiRoutes))
	fmt.Printf("  pages:    %d\n", len(snap.Pages))
	fmt.Printf("  services: %d\n", len(snap.ExternalServices))
	if snap.Stats.FilesSkipped > 0 {
		fmt.Printf("  skipped:  %d unreadable\n", snap.Stats.FilesSkipped)
	}
	if snap.Stats.UnresolvedImports > 0 {
		fmt.Printf("  unresolved imports: %d\n", snap.Stats.UnresolvedImports)
	}
	return nil
}
