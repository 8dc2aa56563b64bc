package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const banner = `
╔══════════════════════════════════════╗
║      Honor TV Spot Rate Board        ║
║                                      ║
╚══════════════════════════════════════╝
`

var rootCmd = &cobra.Command{
	Use:   "honor-tv",
	Short: "Live precious-metal rate board",
	Long:  "Streams gold and silver quotes and renders retail buy/sell prices for the configured commodities.",
	// Running without a subcommand starts the full pipeline.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, priceCmd, ratesCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
