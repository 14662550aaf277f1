// ABOUTME: Export of tracked items, price history, and alerts
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string        `yaml:"version" json:"version"`
	ExportedAt string        `yaml:"exported_at" json:"exported_at"`
	Tool       string        `yaml:"tool" json:"tool"`
	Items      []ExportItem  `yaml:"items" json:"items"`
	Alerts     []ExportAlert `yaml:"alerts,omitempty" json:"alerts,omitempty"`
}

// ExportItem is a tracked item with its full price history
type ExportItem struct {
	ItemID       string        `yaml:"item_id" json:"item_id"`
	Name         string        `yaml:"name" json:"name"`
	URL          string        `yaml:"url" json:"url"`
	Description  string        `yaml:"description,omitempty" json:"description,omitempty"`
	CurrentPrice *float64      `yaml:"current_price,omitempty" json:"current_price,omitempty"`
	TargetPrice  *float64      `yaml:"target_price,omitempty" json:"target_price,omitempty"`
	Active       bool          `yaml:"active" json:"active"`
	CreatedAt    string        `yaml:"created_at" json:"created_at"`
	History      []ExportPrice `yaml:"history" json:"history"`
}

// ExportPrice is one price observation
type ExportPrice struct {
	Price      float64 `yaml:"price" json:"price"`
	RecordedAt string  `yaml:"recorded_at" json:"recorded_at"`
}

// ExportAlert represents an alert for export
type ExportAlert struct {
	AlertID       string `yaml:"alert_id" json:"alert_id"`
	ItemID        string `yaml:"item_id" json:"item_id"`
	Type          string `yaml:"type" json:"type"`
	Message       string `yaml:"message" json:"message"`
	RelatedItemID string `yaml:"related_item_id,omitempty" json:"related_item_id,omitempty"`
	SentAt        string `yaml:"sent_at" json:"sent_at"`
	Read          bool   `yaml:"read" json:"read"`
}

// Export collects all items, their history, and all alerts
func (s *Storage) Export(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    strconv.Itoa(SchemaVersion),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Tool:       "pricewatch",
		Items:      []ExportItem{},
	}

	items, err := s.items.List(ctx, ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	for _, item := range items {
		history, err := s.history.List(ctx, item.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to list history for %s: %w", item.ItemID, err)
		}

		exportItem := ExportItem{
			ItemID:       item.ItemID,
			Name:         item.Name,
			URL:          item.URL,
			Description:  item.Description,
			CurrentPrice: item.CurrentPrice,
			TargetPrice:  item.TargetPrice,
			Active:       item.IsActive,
			CreatedAt:    item.CreatedAt.Format(time.RFC3339),
			History:      make([]ExportPrice, 0, len(history)),
		}
		for _, p := range history {
			exportItem.History = append(exportItem.History, ExportPrice{
				Price:      p.Price,
				RecordedAt: p.RecordedAt.Format(time.RFC3339),
			})
		}
		data.Items = append(data.Items, exportItem)
	}

	alerts, err := s.alerts.List(ctx, AlertFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	for _, a := range alerts {
		data.Alerts = append(data.Alerts, ExportAlert{
			AlertID:       a.AlertID,
			ItemID:        a.ItemID,
			Type:          string(a.Type),
			Message:       a.Message,
			RelatedItemID: a.RelatedItemID,
			SentAt:        a.SentAt.Format(time.RFC3339),
			Read:          a.IsRead,
		})
	}

	return data, nil
}

func createOutput(outputPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

// ExportToYAML exports data to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ExportToMarkdown exports data to a Markdown file
func (s *Storage) ExportToMarkdown(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writeMarkdown(file, data)
	return nil
}

func writeMarkdown(w io.Writer, data *ExportData) {
	_, _ = fmt.Fprintf(w, "# Shopping List Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	if len(data.Items) > 0 {
		_, _ = fmt.Fprintln(w, "## Items")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "| Name | Price | Target | Active |")
		_, _ = fmt.Fprintln(w, "|------|-------|--------|--------|")
		for _, item := range data.Items {
			_, _ = fmt.Fprintf(w, "| [%s](%s) | %s | %s | %t |\n",
				item.Name, item.URL, formatOptionalPrice(item.CurrentPrice),
				formatOptionalPrice(item.TargetPrice), item.Active)
		}
		_, _ = fmt.Fprintln(w)

		_, _ = fmt.Fprintln(w, "## Price History")
		_, _ = fmt.Fprintln(w)
		for _, item := range data.Items {
			if len(item.History) == 0 {
				continue
			}
			_, _ = fmt.Fprintf(w, "### %s\n\n", item.Name)
			for _, p := range item.History {
				_, _ = fmt.Fprintf(w, "- %s: $%.2f\n", p.RecordedAt, p.Price)
			}
			_, _ = fmt.Fprintln(w)
		}
	}

	if len(data.Alerts) > 0 {
		_, _ = fmt.Fprintln(w, "## Alerts")
		_, _ = fmt.Fprintln(w)
		for _, a := range data.Alerts {
			_, _ = fmt.Fprintf(w, "- **%s** (%s): %s\n", a.Type, a.SentAt, a.Message)
		}
		_, _ = fmt.Fprintln(w)
	}
}

func formatOptionalPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *p)
}
