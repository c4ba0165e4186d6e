/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"sort"

	"github.com/fleetdesk/apiserver/config"
	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// initCmd bootstraps the spreadsheet schema: it creates any missing
// resource tab and writes its canonical header row when the tab is
// empty. Existing headers are never touched.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Ensure every resource tab exists with its header row",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		rowStore, err := store.NewSheetsStore(cmd.Context(), cfg.Sheets)
		if err != nil {
			return fmt.Errorf("sheets store: %w", err)
		}

		schema := store.Schema()
		resources := make([]string, 0, len(schema))
		for resource := range schema {
			resources = append(resources, resource)
		}
		sort.Strings(resources)

		for _, resource := range resources {
			if err := rowStore.EnsureResource(cmd.Context(), resource, schema[resource]); err != nil {
				return fmt.Errorf("ensure %s: %w", resource, err)
			}
			fmt.Printf("ok: %s\n", resource)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
