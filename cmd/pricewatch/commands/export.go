// ABOUTME: CLI command to export the shopping list
// ABOUTME: Writes items, price history, and alerts as YAML or Markdown
package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export items, history, and alerts",
		Long: `Export every tracked item with its price history, plus all alerts.

Files ending in .md or .markdown are written as Markdown; anything else
is written as YAML.

Examples:
  pricewatch export ~/shopping.yaml
  pricewatch export ~/shopping.md`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		path := args[0]
		ctx := context.Background()

		var err error
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			err = a.store.ExportToMarkdown(ctx, path)
		default:
			err = a.store.ExportToYAML(ctx, path)
		}
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		}
		return nil
	})
}
