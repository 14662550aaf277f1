// ABOUTME: Price history observations and fetched product snapshots
// ABOUTME: PricePoint rows are append-only and owned by their item
package models

import "time"

// PricePoint is one immutable price observation
type PricePoint struct {
	ID         int64     `json:"id"`
	ItemID     string    `json:"item_id"`
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Product is what the fetcher extracted from a product page
type Product struct {
	Price       *float64 `json:"price"`
	Title       string   `json:"title,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Description string   `json:"description,omitempty"`
}
