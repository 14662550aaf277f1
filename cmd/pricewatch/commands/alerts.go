// ABOUTME: CLI commands to list and manage alerts
// ABOUTME: alerts lists; read, read-all, and delete change alert state
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	alertsUnread bool
)

// NewAlertsCmd creates the alerts command and its subcommands
func NewAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts",
		Long: `List price_drop and similar_item alerts, newest first.

Examples:
  pricewatch alerts
  pricewatch alerts --unread
  pricewatch alerts read alert_9c1d...
  pricewatch alerts read-all
  pricewatch alerts delete alert_9c1d...`,
		Args: cobra.NoArgs,
		RunE: runAlerts,
	}

	cmd.Flags().BoolVarP(&alertsUnread, "unread", "u", false, "Only unread alerts")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "read <alert-id>",
			Short: "Mark an alert as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(a *app) error {
					if err := a.tracker.MarkAlertRead(context.Background(), args[0]); err != nil {
						return fmt.Errorf("marking alert read: %w", err)
					}
					if !quiet {
						fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as read\n", args[0])
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every alert as read",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(a *app) error {
					n, err := a.tracker.MarkAllRead(context.Background())
					if err != nil {
						return fmt.Errorf("marking alerts read: %w", err)
					}
					if !quiet {
						fmt.Fprintf(cmd.OutOrStdout(), "Marked %d alert(s) as read\n", n)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <alert-id>",
			Short: "Delete an alert",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(a *app) error {
					if err := a.tracker.DeleteAlert(context.Background(), args[0]); err != nil {
						return fmt.Errorf("deleting alert: %w", err)
					}
					if !quiet {
						fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
					}
					return nil
				})
			},
		},
	)

	return cmd
}

func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func runAlerts(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		alerts, err := a.tracker.ListAlerts(context.Background(), alertsUnread)
		if err != nil {
			return fmt.Errorf("listing alerts: %w", err)
		}

		if wantJSON() {
			return writeJSON(cmd.OutOrStdout(), alerts)
		}
		if len(alerts) == 0 {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "No alerts\n")
			}
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, " \tSENT\tTYPE\tMESSAGE\tALERT ID\n")
		for _, alert := range alerts {
			marker := "*"
			if alert.IsRead {
				marker = " "
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				marker, formatTime(alert.SentAt), alert.Type, truncate(alert.Message, 70), alert.AlertID)
		}
		w.Flush()
		return nil
	})
}
