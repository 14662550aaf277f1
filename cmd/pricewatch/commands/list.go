// ABOUTME: CLI command to list tracked items
// ABOUTME: Shows current and target prices with last check time
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listAll bool
)

// NewListCmd creates list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked items",
		Long: `List tracked items with their current and target prices.

Paused items are hidden unless --all is given.

Examples:
  pricewatch list
  pricewatch list --all
  pricewatch list --format json`,
		RunE: runList,
	}

	cmd.Flags().BoolVar(&listAll, "all", false, "Include paused items")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.tracker.ListItems(context.Background(), !listAll)
	if err != nil {
		return fmt.Errorf("listing items: %w", err)
	}

	if wantJSON() {
		return writeJSON(cmd.OutOrStdout(), items)
	}

	if len(items) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No items tracked\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tPRICE\tTARGET\tCHECKED\tSTATUS\tITEM ID\n")
	fmt.Fprintf(w, "----\t-----\t------\t-------\t------\t-------\n")
	for _, item := range items {
		checked := "never"
		if item.LastCheckedAt != nil {
			checked = formatTime(*item.LastCheckedAt)
		}
		status := "active"
		if !item.IsActive {
			status = "paused"
		} else if item.ConsecutiveFailures > 0 {
			status = fmt.Sprintf("failing (%d)", item.ConsecutiveFailures)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(item.DisplayName(), 30),
			formatPrice(item.CurrentPrice),
			formatPrice(item.TargetPrice),
			checked,
			status,
			item.ItemID)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d item(s)\n", len(items))
	}
	return nil
}
