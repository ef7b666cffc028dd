package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var servicesJSON bool

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List external service usage",
	RunE:  runServices,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.Flags().BoolVar(&servicesJSON, "json", false, "Output JSON")
}

func runServices(cmd *cobra.Command, args []string) error {
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

	services, err := engine.ListServices()
	if err != nil {
		return err
	}

	if servicesJSON {
		return json.NewEncoder(os.Stdout).Encode(services)
	}

	for _, s := range services {
		fmt.Printf("%-15s %4d call sites in %d files\n", s.Name, s.UsageCount, len(s.Files))
	}
	fmt.Printf("\n%d services\n", len(services))
	return nil
}
