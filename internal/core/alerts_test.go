// ABOUTME: Tests for the alert manager
// ABOUTME: Covers best-effort delivery, read state, deletion, and similar_item dedupe
package core

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/notify"
)

func TestAlertManager_DeliveryFailureKeepsAlert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.notifier.err = &notify.DeliveryError{Channel: "email", Err: errors.New("smtp down")}

	item := env.addItem(t, "kettle", models.Float(40), models.Float(30))
	env.fetcher.setPrice(item.URL, 25)

	result, err := env.tracker.CheckItem(ctx, item.ItemID)
	if err != nil {
		t.Fatalf("CheckItem() error = %v", err)
	}
	if result.Alert == nil {
		t.Fatal("expected an alert despite delivery failure")
	}
	if env.notifier.count() != 1 {
		t.Errorf("notifier attempts = %d, want 1", env.notifier.count())
	}

	alerts, _ := env.tracker.ListAlerts(ctx, true)
	if len(alerts) != 1 || alerts[0].AlertID != result.Alert.AlertID {
		t.Errorf("stored alerts = %+v", alerts)
	}
}

func TestAlertManager_ReadAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.addItem(t, "blender", models.Float(60), nil)

	var ids []string
	for i := 0; i < 3; i++ {
		a, created, err := env.tracker.alerts.Create(ctx, item, models.AlertPriceDrop, "drop", AlertOptions{Price: models.Float(50)})
		if err != nil || !created {
			t.Fatalf("Create() = %v, %v", created, err)
		}
		ids = append(ids, a.AlertID)
	}

	if err := env.tracker.MarkAlertRead(ctx, ids[0]); err != nil {
		t.Fatalf("MarkAlertRead() error = %v", err)
	}
	unread, _ := env.tracker.ListAlerts(ctx, true)
	if len(unread) != 2 {
		t.Errorf("unread = %d, want 2", len(unread))
	}

	n, err := env.tracker.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	if n != 2 {
		t.Errorf("MarkAllRead() = %d, want 2", n)
	}
	unread, _ = env.tracker.ListAlerts(ctx, true)
	if len(unread) != 0 {
		t.Errorf("unread after mark all = %d", len(unread))
	}

	if err := env.tracker.DeleteAlert(ctx, ids[1]); err != nil {
		t.Fatalf("DeleteAlert() error = %v", err)
	}
	all, _ := env.tracker.ListAlerts(ctx, false)
	if len(all) != 2 {
		t.Errorf("alerts after delete = %d, want 2", len(all))
	}

	if err := env.tracker.DeleteAlert(ctx, ids[1]); !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("second delete error = %v, want ErrAlertNotFound", err)
	}
	if err := env.tracker.MarkAlertRead(ctx, "alert_missing"); !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("MarkAlertRead(missing) error = %v, want ErrAlertNotFound", err)
	}
}

func TestAlertManager_SimilarDedupe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.addItem(t, "desk", models.Float(300), nil)
	other := env.addItem(t, "cheaper-desk", models.Float(200), nil)

	opts := AlertOptions{Price: models.Float(200), RelatedItemID: other.ItemID}
	_, created, err := env.tracker.alerts.Create(ctx, item, models.AlertSimilarItem, "found", opts)
	if err != nil || !created {
		t.Fatalf("first Create() = %v, %v", created, err)
	}
	alert, created, err := env.tracker.alerts.Create(ctx, item, models.AlertSimilarItem, "found", opts)
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	if created || alert != nil {
		t.Errorf("duplicate similar_item alert created")
	}

	// Price drops are never deduped by the manager itself.
	for i := 0; i < 2; i++ {
		if _, created, _ := env.tracker.alerts.Create(ctx, item, models.AlertPriceDrop, "drop", AlertOptions{}); !created {
			t.Errorf("price_drop %d not created", i)
		}
	}
}
