// ABOUTME: AlertManager persists alerts and forwards them to the notifier
// ABOUTME: Delivery is best effort: a failed send never undoes or blocks the stored alert
package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/notify"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

// AlertOptions carries optional alert fields
type AlertOptions struct {
	Price         *float64
	RelatedItemID string
	// DeferDelivery stores the alert without sending it; the caller hands
	// it to DeliverAll later
	DeferDelivery bool
}

// AlertManager owns alert creation, reads, and deletion
type AlertManager struct {
	store       *sqlite.Storage
	notifier    notify.Notifier
	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewAlertManager creates an AlertManager. A nil notifier disables delivery.
func NewAlertManager(store *sqlite.Storage, notifier notify.Notifier, sendTimeout time.Duration, logger *slog.Logger) *AlertManager {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &AlertManager{
		store:       store,
		notifier:    notifier,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Create stores an alert for item and then tries to deliver it. A
// similar_item alert for a pair that already has one is not stored again;
// created reports whether a new row was written.
func (m *AlertManager) Create(ctx context.Context, item *models.Item, alertType models.AlertType, message string, opts AlertOptions) (alert *models.Alert, created bool, err error) {
	if alertType == models.AlertSimilarItem && opts.RelatedItemID != "" {
		exists, err := m.store.Alerts().HasSimilar(ctx, item.ItemID, opts.RelatedItemID)
		if err != nil {
			return nil, false, fmt.Errorf("check duplicate alert: %w", err)
		}
		if exists {
			return nil, false, nil
		}
	}

	alert, err = models.NewAlert(item.ItemID, alertType, message)
	if err != nil {
		return nil, false, err
	}
	alert.Price = opts.Price
	alert.RelatedItemID = opts.RelatedItemID

	if err := m.store.Alerts().Create(ctx, alert); err != nil {
		return nil, false, err
	}

	m.logger.Info("alert created",
		"alert_id", alert.AlertID, "item_id", item.ItemID, "type", alertType)
	if !opts.DeferDelivery {
		m.deliver(ctx, alert, item)
	}
	return alert, true, nil
}

func (m *AlertManager) deliver(ctx context.Context, alert *models.Alert, item *models.Item) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.sendTimeout)
	defer cancel()

	if err := m.notifier.Send(ctx, alert, item); err != nil {
		m.logFailure(err, "alert_id", alert.AlertID, "item_id", item.ItemID)
		return
	}
	m.logger.Debug("alert delivered", "alert_id", alert.AlertID)
}

// DeliverAll sends already stored alerts. A notifier that supports digests
// gets them in one message; otherwise each is sent on its own.
func (m *AlertManager) DeliverAll(ctx context.Context, deliveries []notify.Delivery) {
	if len(deliveries) == 0 {
		return
	}
	batcher, ok := m.notifier.(notify.BatchNotifier)
	if !ok || len(deliveries) == 1 {
		for _, d := range deliveries {
			m.deliver(ctx, d.Alert, d.Item)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.sendTimeout)
	defer cancel()
	if err := batcher.SendBatch(ctx, deliveries); err != nil {
		m.logFailure(err, "alerts", len(deliveries))
		return
	}
	m.logger.Debug("alert digest delivered", "alerts", len(deliveries))
}

func (m *AlertManager) logFailure(err error, args ...any) {
	args = append(args, "error", err)
	if notify.IsDeliveryError(err) {
		m.logger.Warn("alert delivery failed", args...)
		return
	}
	m.logger.Error("notifier returned an unexpected error", args...)
}

// LatestPriceDrop returns the item's newest price_drop alert, or nil
func (m *AlertManager) LatestPriceDrop(ctx context.Context, itemID string) (*models.Alert, error) {
	return m.store.Alerts().LatestPriceDrop(ctx, itemID)
}

// List returns alerts newest first
func (m *AlertManager) List(ctx context.Context, unreadOnly bool) ([]*models.Alert, error) {
	return m.store.Alerts().List(ctx, sqlite.AlertFilter{UnreadOnly: unreadOnly})
}

// MarkRead flags one alert as read
func (m *AlertManager) MarkRead(ctx context.Context, alertID string) error {
	return notFound(m.store.Alerts().MarkRead(ctx, alertID), ErrAlertNotFound, alertID)
}

// MarkAllRead flags every unread alert and returns how many changed
func (m *AlertManager) MarkAllRead(ctx context.Context) (int64, error) {
	return m.store.Alerts().MarkAllRead(ctx)
}

// Delete removes an alert
func (m *AlertManager) Delete(ctx context.Context, alertID string) error {
	return notFound(m.store.Alerts().Delete(ctx, alertID), ErrAlertNotFound, alertID)
}
