package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/catalystlab/catalyst/internal/strategy"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List built-in strategy presets",
	Run: func(cmd *cobra.Command, args []string) {
		presets := strategy.Presets()
		names := make([]string, 0, len(presets))
		for name := range presets {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			d := presets[name]
			fmt.Printf("%-24s %-6s %s\n", name, d.Direction, d.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
