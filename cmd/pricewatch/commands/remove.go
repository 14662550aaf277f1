// ABOUTME: CLI command to stop tracking an item
// ABOUTME: Deletes the item together with its price history and alerts
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <item-id>",
		Aliases: []string{"rm"},
		Short:   "Stop tracking an item",
		Long: `Stop tracking an item. Its price history and alerts are deleted too.

Examples:
  pricewatch remove item_3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.DeleteItem(context.Background(), args[0]); err != nil {
		return fmt.Errorf("removing item: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	}
	return nil
}
