// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output formatting helpers for prices, times, and JSON
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/harper/pricewatch/internal/notify"
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// formatPrice renders an optional price, "-" when unknown
func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return notify.FormatPrice(*p)
}

func wantJSON() bool {
	return outputFormat == "json"
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// validateFraction returns an error unless 0 <= v <= 1
func validateFraction(v float64, name string) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", name, v)
	}
	return nil
}
