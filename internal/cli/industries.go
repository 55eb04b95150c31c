package cli

import (
	"fmt"

	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var industriesCmd = &cobra.Command{
	Use:   "industries",
	Short: "List supported target industries",
	Long:  "List the industry codes accepted by the analyze command and the API.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Supported industries:")
		for _, industry := range types.SupportedIndustries {
			fmt.Printf("  %-20s %s\n", industry, industry.DisplayName())
		}
	},
}
