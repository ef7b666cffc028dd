package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var modulesJSON bool

var modulesCmd = &cobra.Command{
	Use:   "modules [name]",
	Short: "List modules, or show one module in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	modulesCmd.Flags().BoolVar(&modulesJSON, "json", false, "Output JSON")
}

func runModules(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		mod, err := engine.GetModule(args[0])
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(mod)
	}

	mods, err := engine.ListModules()
	if err != nil {
		return err
	}

	if modulesJSON {
		return json.NewEncoder(os.Stdout).Encode(mods)
	}

	for _, m := range mods {
		fmt.Printf("%-20s %3d files", m.Name, len(m.Files))
		if len(m.ExternalServices) > 0 {
			fmt.Printf("  [%s]", strings.Join(m.ExternalServices, ", "))
		}
		fmt.Println()
		if m.Description != "" {
			fmt.Printf("  %s\n", m.Description)
		}
	}
	return nil
}
