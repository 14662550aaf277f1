// ABOUTME: CLI command to check prices now
// ABOUTME: Checks one item or every active item and reports recorded prices and alerts
package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/pricewatch/internal/core"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [item-id]",
		Short: "Check prices now",
		Long: `Fetch current prices now instead of waiting for the schedule.

With an item ID only that item is checked; otherwise every active item.
Prices are recorded and price_drop alerts raised exactly as a scheduled
check would.

Examples:
  pricewatch check
  pricewatch check item_3f2a...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	var results []core.CheckResult
	var report *core.CycleReport

	if len(args) == 1 {
		result, err := a.tracker.CheckItem(ctx, args[0])
		if err != nil {
			return fmt.Errorf("checking item: %w", err)
		}
		results = []core.CheckResult{*result}
	} else {
		report, err = a.tracker.CheckAll(ctx)
		if err != nil {
			return fmt.Errorf("checking items: %w", err)
		}
		results = report.Results
	}

	if wantJSON() {
		if report != nil {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		return writeJSON(cmd.OutOrStdout(), results[0])
	}

	printResults(cmd.OutOrStdout(), results)
	if report != nil && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nChecked %d, recorded %d, skipped %d, alerts %d\n",
			report.Checked, report.Recorded, report.Skipped, report.Alerts)
	}
	return nil
}

func printResults(out io.Writer, results []core.CheckResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tRESULT\tPRICE\tPREVIOUS\tALERT\n")
	for _, r := range results {
		outcome := string(r.State)
		if r.Error != "" {
			outcome = fmt.Sprintf("%s: %s", r.State, truncate(r.Error, 40))
		}
		alert := ""
		if r.Alert != nil {
			alert = r.Alert.Message
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(r.Name, 30), outcome, formatPrice(r.Price), formatPrice(r.Previous), alert)
	}
	w.Flush()
}
