// ABOUTME: Root command and global flags for the pricewatch CLI
// ABOUTME: Registers every subcommand and enforces --verbose/--quiet exclusivity
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
)

const banner = `
 ███ ████  ███  ███ ████ █   █  ███  █████  ███ █   █
 █ █ █  █   █  █    █    █   █ █   █   █   █    █   █
 ███ ████   █  █    ███  █ █ █ █████   █   █    █████
 █   █ █    █  █    █    ██ ██ █   █   █   █    █   █
 █   █  █  ███  ███ ████ █   █ █   █   █    ███ █   █
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricewatch",
		Short: "Track shopping list prices and find better deals",
		Long: banner + `
pricewatch tracks product pages on your shopping list, records their
prices over time, alerts you when a price reaches your target, and
finds similar items that cost less.

Prices are checked every CHECK_INTERVAL_HOURS (default 6) by "serve"
or "mcp". Data lives in a local SQLite database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet cannot be used together")
			}
			switch outputFormat {
			case "auto", "table", "json":
				return nil
			default:
				return fmt.Errorf("--format must be auto, table, or json, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors and suppress summaries")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, or json")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: $XDG_DATA_HOME/pricewatch/pricewatch.db)")

	cmd.AddCommand(
		NewServeCmd(),
		NewMCPCmd(),
		NewAddCmd(),
		NewListCmd(),
		NewRemoveCmd(),
		NewHistoryCmd(),
		NewCheckCmd(),
		NewAlertsCmd(),
		NewSimilarCmd(),
		NewDealsCmd(),
		NewAlternativesCmd(),
		NewExportCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
