// ABOUTME: Item represents a tracked product on the shopping list
// ABOUTME: Holds the latest known price, target threshold, and cached embedding
package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is a product the user is watching
type Item struct {
	ItemID       string   `json:"id"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	CurrentPrice *float64 `json:"current_price"`
	TargetPrice  *float64 `json:"target_price"`
	IsActive     bool     `json:"is_active"`

	// Embedding is cached from the embedder; EmbeddingKey is the hash of the
	// text it was computed from.
	Embedding    []float64 `json:"-"`
	EmbeddingKey string    `json:"-"`

	LastCheckedAt       *time.Time `json:"last_checked_at,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastError           string     `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemInput carries the caller-supplied fields for a new item
type ItemInput struct {
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	TargetPrice  *float64 `json:"target_price,omitempty"`
}

// ItemPatch holds optional updates; nil fields are left alone
type ItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	TargetPrice *float64 `json:"target_price,omitempty"`
	ClearTarget bool     `json:"clear_target,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// ErrInvalidItem is returned when item fields fail validation
var ErrInvalidItem = errors.New("invalid item")

// NewItem validates input and builds an active Item with a fresh ID
func NewItem(in ItemInput) (*Item, error) {
	if err := ValidateURL(in.URL); err != nil {
		return nil, err
	}
	if err := validatePrice("current_price", in.CurrentPrice); err != nil {
		return nil, err
	}
	if err := validatePrice("target_price", in.TargetPrice); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Item{
		ItemID:       generateItemID(),
		Name:         strings.TrimSpace(in.Name),
		URL:          strings.TrimSpace(in.URL),
		Description:  strings.TrimSpace(in.Description),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		CurrentPrice: in.CurrentPrice,
		TargetPrice:  in.TargetPrice,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Apply merges a patch into the item and bumps UpdatedAt
func (i *Item) Apply(p ItemPatch) error {
	if p.TargetPrice != nil {
		if err := validatePrice("target_price", p.TargetPrice); err != nil {
			return err
		}
	}
	if p.Name != nil {
		i.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		i.Description = strings.TrimSpace(*p.Description)
	}
	if p.ImageURL != nil {
		i.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
	if p.ClearTarget {
		i.TargetPrice = nil
	} else if p.TargetPrice != nil {
		v := *p.TargetPrice
		i.TargetPrice = &v
	}
	if p.IsActive != nil {
		i.IsActive = *p.IsActive
	}
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// DisplayName returns the name, falling back to the URL
func (i *Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.URL
}

// EmbeddingText is the text fed to the embedder for this item
func (i *Item) EmbeddingText() string {
	return strings.TrimSpace(i.Name + " " + i.Description)
}

// ValidateURL checks that raw is an absolute http(s) URL
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: url cannot be empty", ErrInvalidItem)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: url: %v", ErrInvalidItem, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url must be http or https, got %q", ErrInvalidItem, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", ErrInvalidItem)
	}
	return nil
}

func validatePrice(field string, p *float64) error {
	if p != nil && *p < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %.2f", ErrInvalidItem, field, *p)
	}
	return nil
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

func generateItemID() string {
	return fmt.Sprintf("item_%s", uuid.New().String())
}
