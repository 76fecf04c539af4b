package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Print the active repair cost table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadPricing()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), RenderPricing(table))
		return nil
	},
}
