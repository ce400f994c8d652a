// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/delldu/poolformer/internal/variant"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known PoolFormer variants",
	Long:  `List every model variant that can be evaluated, with the config and checkpoint paths each one uses.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printVariantTable(variant.All())
		return nil
	},
}

func printVariantTable(variants []variant.Variant) {
	header := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	// Pad before styling so ANSI escapes do not skew the columns.
	fmt.Println(header.Render(fmt.Sprintf("%-8s %-60s %s", "VARIANT", "CONFIG", "CHECKPOINT")))
	for _, v := range variants {
		fmt.Printf("%s %-60s %s\n",
			VariantStyle.Render(fmt.Sprintf("%-8s", v.Name)),
			v.ConfigPath,
			v.CheckpointPath)
	}
}
