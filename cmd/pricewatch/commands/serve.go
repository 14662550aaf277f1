// ABOUTME: Serve command runs the periodic price checker in the foreground
// ABOUTME: Stops cleanly on SIGINT or SIGTERM after the in-flight cycle is cancelled
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Check prices on a schedule",
		Long: `Run the price monitor in the foreground.

Every CHECK_INTERVAL_HOURS (default 6) all active items are fetched,
their prices recorded, and price_drop alerts raised. Set
CHECK_ON_START=true to run a cycle immediately.

Examples:
  pricewatch serve
  CHECK_INTERVAL_HOURS=1 pricewatch serve --verbose`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := a.newScheduler()
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		return fmt.Errorf("stopping scheduler: %w", err)
	}
	return nil
}
