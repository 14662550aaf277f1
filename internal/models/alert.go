// ABOUTME: Alert represents a notification about a tracked item
// ABOUTME: Two kinds exist: target price drops and cheaper similar items
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AlertType distinguishes what triggered an alert
type AlertType string

const (
	AlertPriceDrop   AlertType = "price_drop"
	AlertSimilarItem AlertType = "similar_item"
)

// Valid reports whether t is a known alert type
func (t AlertType) Valid() bool {
	return t == AlertPriceDrop || t == AlertSimilarItem
}

// Alert is a user-facing notification record
type Alert struct {
	AlertID       string    `json:"id"`
	ItemID        string    `json:"item_id"`
	Type          AlertType `json:"alert_type"`
	Message       string    `json:"message"`
	Price         *float64  `json:"price,omitempty"`
	RelatedItemID string    `json:"related_item_id,omitempty"`
	SentAt        time.Time `json:"sent_at"`
	IsRead        bool      `json:"is_read"`
}

// NewAlert creates an unread alert stamped with the current time
func NewAlert(itemID string, alertType AlertType, message string) (*Alert, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, errors.New("item ID cannot be empty")
	}
	if !alertType.Valid() {
		return nil, fmt.Errorf("unknown alert type %q", alertType)
	}
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("alert message cannot be empty")
	}
	return &Alert{
		AlertID: fmt.Sprintf("alert_%s", uuid.New().String()),
		ItemID:  itemID,
		Type:    alertType,
		Message: message,
		SentAt:  time.Now().UTC(),
	}, nil
}
