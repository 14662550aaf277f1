// ABOUTME: CLI command to show an item's price history
// ABOUTME: Prints observations oldest first with the change from the previous one
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show an item's price history",
		Long: `Show every recorded price for an item, oldest first.

Examples:
  pricewatch history item_3f2a...
  pricewatch history item_3f2a... --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	history, err := a.tracker.GetHistory(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting history: %w", err)
	}

	if wantJSON() {
		return writeJSON(cmd.OutOrStdout(), history)
	}
	if len(history) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No prices recorded\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RECORDED\tPRICE\tCHANGE\n")
	for i, p := range history {
		change := ""
		if i > 0 && history[i-1].Price > 0 {
			prev := history[i-1].Price
			change = fmt.Sprintf("%+.1f%%", (p.Price-prev)/prev*100)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			p.RecordedAt.Local().Format("2006-01-02 15:04"),
			formatPrice(&p.Price),
			change)
	}
	return w.Flush()
}
