// ABOUTME: CLI commands for similarity search over tracked items
// ABOUTME: similar ranks by embedding similarity; deals and alternatives find cheaper matches
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	similarMin float64
)

// NewSimilarCmd creates the similar command
func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <item-id>",
		Short: "Find tracked items similar to an item",
		Long: `Rank other active items by semantic similarity to an item.

Requires OPENAI_API_KEY for embeddings; without it no matches are found.

Examples:
  pricewatch similar item_3f2a...
  pricewatch similar item_3f2a... --min 0.6`,
		Args: cobra.ExactArgs(1),
		RunE: runSimilar,
	}

	cmd.Flags().Float64Var(&similarMin, "min", -1, "Minimum similarity 0-1 (default: SIMILARITY_THRESHOLD)")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		minSimilarity := a.tracker.DefaultSimilarity()
		if cmd.Flags().Changed("min") {
			if err := validateFraction(similarMin, "--min"); err != nil {
				return err
			}
			minSimilarity = similarMin
		}

		similar, err := a.tracker.GetSimilar(context.Background(), args[0], minSimilarity)
		if err != nil {
			return fmt.Errorf("finding similar items: %w", err)
		}

		if wantJSON() {
			return writeJSON(cmd.OutOrStdout(), similar)
		}
		if len(similar) == 0 {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "No similar items at %.2f or above\n", minSimilarity)
			}
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SIMILARITY\tNAME\tPRICE\tITEM ID\n")
		for _, s := range similar {
			fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
				s.Similarity, truncate(s.Item.DisplayName(), 40), formatPrice(s.Item.CurrentPrice), s.Item.ItemID)
		}
		return w.Flush()
	})
}

// NewDealsCmd creates the deals command
func NewDealsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deals <item-id>",
		Short: "Find cheaper similar items",
		Long: `List similar items that cost at least SAVINGS_THRESHOLD_PERCENT (default 10)
less than the item, biggest savings first.

Examples:
  pricewatch deals item_3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: runDeals,
	}
}

func runDeals(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		deals, err := a.tracker.GetBetterDeals(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("finding deals: %w", err)
		}

		if wantJSON() {
			return writeJSON(cmd.OutOrStdout(), deals)
		}
		if len(deals) == 0 {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "No better deals found\n")
			}
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SAVINGS\tPRICE\tSIMILARITY\tNAME\tITEM ID\n")
		for _, d := range deals {
			fmt.Fprintf(w, "%.0f%% (%s)\t%s\t%.3f\t%s\t%s\n",
				d.SavingsPercent*100, formatPrice(&d.SavingsAmount), formatPrice(d.Item.CurrentPrice),
				d.Similarity, truncate(d.Item.DisplayName(), 40), d.Item.ItemID)
		}
		return w.Flush()
	})
}

// NewAlternativesCmd creates the alternatives command
func NewAlternativesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alternatives <item-id>",
		Short: "Raise alerts for cheaper similar items",
		Long: `Create a similar_item alert for each better deal that has not been
alerted for this item before. Alerts are emailed when SMTP is configured.

Examples:
  pricewatch alternatives item_3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: runAlternatives,
	}
}

func runAlternatives(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		alerts, err := a.tracker.FindAlternatives(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("finding alternatives: %w", err)
		}

		if wantJSON() {
			return writeJSON(cmd.OutOrStdout(), alerts)
		}
		for _, alert := range alerts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", alert.Message)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%d new alert(s)\n", len(alerts))
		}
		return nil
	})
}
