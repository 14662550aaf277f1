// ABOUTME: CLI command to start tracking a product page
// ABOUTME: Missing name or price are scraped from the page when possible
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/pricewatch/internal/models"
)

var (
	addName        string
	addDescription string
	addPrice       float64
	addTarget      float64
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Track a product page",
		Long: `Start tracking a product page.

If --name or --price are omitted they are read from the page. A known
price becomes the first point in the item's price history. With
--target, an alert fires when the price reaches the target or below.

Examples:
  pricewatch add https://shop.example.com/headphones --target 80
  pricewatch add https://shop.example.com/kettle --name "Kettle" --price 39.99`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().StringVarP(&addName, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&addDescription, "description", "d", "", "Description used for similarity matching")
	cmd.Flags().Float64Var(&addPrice, "price", 0, "Known current price")
	cmd.Flags().Float64VarP(&addTarget, "target", "t", 0, "Target price for alerts")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	in := models.ItemInput{
		Name:        addName,
		URL:         args[0],
		Description: addDescription,
	}
	if cmd.Flags().Changed("price") {
		in.CurrentPrice = models.Float(addPrice)
	}
	if cmd.Flags().Changed("target") {
		in.TargetPrice = models.Float(addTarget)
	}

	item, err := a.tracker.CreateItem(context.Background(), in)
	if err != nil {
		return fmt.Errorf("adding item: %w", err)
	}

	if wantJSON() {
		return writeJSON(cmd.OutOrStdout(), item)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s (%s)\n", item.DisplayName(), item.ItemID)
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "  Price:  %s\n", formatPrice(item.CurrentPrice))
		fmt.Fprintf(cmd.OutOrStdout(), "  Target: %s\n", formatPrice(item.TargetPrice))
	}
	return nil
}
