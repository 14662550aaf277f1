// ABOUTME: Best-effort delivery of alerts to the user over external channels
// ABOUTME: Failures surface as *DeliveryError and never affect stored alerts
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/pricewatch/internal/models"
)

// Notifier delivers an alert about an item
type Notifier interface {
	Send(ctx context.Context, alert *models.Alert, item *models.Item) error
}

// Delivery pairs an alert with the item it is about
type Delivery struct {
	Alert *models.Alert
	Item  *models.Item
}

// BatchNotifier can deliver several alerts as one digest
type BatchNotifier interface {
	Notifier
	SendBatch(ctx context.Context, deliveries []Delivery) error
}

// DeliveryError is the only error kind a Notifier returns
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsDeliveryError reports whether err is a DeliveryError
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}

// ErrNotConfigured means the channel lacks the settings needed to send
var ErrNotConfigured = errors.New("notifier not configured")

// Nop discards every alert
type Nop struct{}

// Send does nothing
func (Nop) Send(ctx context.Context, alert *models.Alert, item *models.Item) error {
	return nil
}
