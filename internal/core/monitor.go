// ABOUTME: Price monitor that re-fetches tracked items and records observations
// ABOUTME: Checks run with bounded concurrency and a per-item timeout; one failure never stops a batch
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/harper/pricewatch/internal/fetcher"
	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/notify"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

// Fetcher retrieves the current product details for a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (models.Product, error)
}

// CheckState is where a single item check ended up
type CheckState string

const (
	StatePending  CheckState = "pending"
	StateFetching CheckState = "fetching"
	StateRecorded CheckState = "recorded"
	StateSkipped  CheckState = "skipped"
)

// significantMove is the relative change worth logging even without an alert
const significantMove = 0.05

// CheckResult describes the outcome of checking one item
type CheckResult struct {
	ItemID   string        `json:"item_id"`
	Name     string        `json:"name"`
	State    CheckState    `json:"state"`
	Price    *float64      `json:"price,omitempty"`
	Previous *float64      `json:"previous_price,omitempty"`
	Alert    *models.Alert `json:"alert,omitempty"`
	Error    string        `json:"error,omitempty"`

	item *models.Item
}

// CycleReport summarizes one pass over all active items
type CycleReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Checked    int           `json:"checked"`
	Recorded   int           `json:"recorded"`
	Skipped    int           `json:"skipped"`
	Alerts     int           `json:"alerts"`
	Results    []CheckResult `json:"results"`
}

// MonitorConfig tunes the monitor
type MonitorConfig struct {
	MaxConcurrent int
	FetchTimeout  time.Duration
}

// Monitor checks item prices and raises price_drop alerts
type Monitor struct {
	store   *sqlite.Storage
	fetcher Fetcher
	alerts  *AlertManager
	cfg     MonitorConfig
	logger  *slog.Logger
	now     func() time.Time

	// Shared by batch and on-demand checks.
	slots *semaphore.Weighted

	// Serializes record-and-alert per item so overlapping manual and
	// scheduled checks decide on a consistent previous price. Entries live
	// only while a check holds or waits on them.
	locksMu sync.Mutex
	locks   map[string]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

// NewMonitor creates a Monitor
func NewMonitor(store *sqlite.Storage, f Fetcher, alerts *AlertManager, cfg MonitorConfig, logger *slog.Logger) *Monitor {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	return &Monitor{
		store:   store,
		fetcher: f,
		alerts:  alerts,
		cfg:     cfg,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		slots:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		locks:   make(map[string]*itemLock),
	}
}

// CheckAll checks every active item. The error is non-nil only when the
// item list cannot be read. Alerts raised during the cycle are delivered
// together once every check has finished.
func (m *Monitor) CheckAll(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{StartedAt: m.now()}

	items, err := m.store.Items().List(ctx, sqlite.ItemFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list active items: %w", err)
	}

	m.logger.Info("price check cycle started", "items", len(items))

	results := make([]CheckResult, len(items))
	var g errgroup.Group
	g.SetLimit(m.cfg.MaxConcurrent)
	for i, item := range items {
		results[i] = CheckResult{ItemID: item.ItemID, Name: item.DisplayName(), State: StatePending}
		g.Go(func() error {
			results[i] = m.check(ctx, item, true)
			return nil
		})
	}
	_ = g.Wait()

	var raised []notify.Delivery
	report.Results = results
	for _, r := range results {
		report.Checked++
		switch r.State {
		case StateRecorded:
			report.Recorded++
		default:
			report.Skipped++
		}
		if r.Alert != nil {
			report.Alerts++
			raised = append(raised, notify.Delivery{Alert: r.Alert, Item: r.item})
		}
	}
	m.alerts.DeliverAll(ctx, raised)
	report.FinishedAt = m.now()

	m.logger.Info("price check cycle finished",
		"checked", report.Checked, "recorded", report.Recorded,
		"skipped", report.Skipped, "alerts", report.Alerts,
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// CheckItem checks a single active item on demand
func (m *Monitor) CheckItem(ctx context.Context, itemID string) (*CheckResult, error) {
	item, err := m.store.Items().Get(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, itemID)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrItemInactive, itemID)
	}
	result := m.check(ctx, item, false)
	return &result, nil
}

// check fetches and records one item. With deferDelivery set, a raised
// alert is stored but left for the caller to deliver.
func (m *Monitor) check(ctx context.Context, item *models.Item, deferDelivery bool) CheckResult {
	result := CheckResult{ItemID: item.ItemID, Name: item.DisplayName(), State: StateFetching}
	log := m.logger.With("item_id", item.ItemID)

	if err := ctx.Err(); err != nil {
		result.State = StateSkipped
		result.Error = err.Error()
		return result
	}
	if err := m.slots.Acquire(ctx, 1); err != nil {
		result.State = StateSkipped
		result.Error = err.Error()
		return result
	}
	defer m.slots.Release(1)

	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	product, err := m.fetcher.Fetch(fetchCtx, item.URL)
	cancel()

	if err == nil && product.Price == nil {
		err = &fetcher.FetchError{URL: item.URL, Reason: fetcher.ReasonParse, Err: errors.New("no price found")}
	}
	if err != nil {
		result.State = StateSkipped
		result.Error = err.Error()
		m.recordFailure(ctx, log, item, err)
		return result
	}

	unlock := m.lock(item.ItemID)
	defer unlock()

	change, err := m.store.History().RecordPrice(ctx, item.ItemID, *product.Price, m.now())
	if err != nil {
		result.State = StateSkipped
		result.Error = err.Error()
		log.Error("record price failed", "error", err)
		return result
	}
	result.State = StateRecorded
	result.Price = product.Price
	result.Previous = change.Previous

	if change.Previous != nil && *change.Previous > 0 {
		move := (*product.Price - *change.Previous) / *change.Previous
		if math.Abs(move) > significantMove {
			log.Info("significant price change",
				"old", *change.Previous, "new", *product.Price, "change_pct", move*100)
		}
	}

	alert, err := m.maybeAlert(ctx, change, deferDelivery)
	if err != nil {
		log.Error("price drop alert failed", "error", err)
	}
	result.Alert = alert
	result.item = change.Item
	return result
}

func (m *Monitor) recordFailure(ctx context.Context, log *slog.Logger, item *models.Item, cause error) {
	reason := "error"
	if fetcher.IsFetchFailure(cause) {
		reason = string(fetcher.ReasonOf(cause))
	}
	failures, err := m.store.Items().RecordFailure(ctx, item.ItemID, cause.Error(), m.now())
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("record failure failed", "error", err)
	}
	log.Warn("price check failed",
		"reason", reason, "consecutive_failures", failures, "error", cause)
}

func (m *Monitor) maybeAlert(ctx context.Context, change *sqlite.PriceChange, deferDelivery bool) (*models.Alert, error) {
	item := change.Item
	price := change.Point.Price

	var lastAlertPrice *float64
	hasAlert := false
	if item.TargetPrice != nil && price <= *item.TargetPrice {
		last, err := m.alerts.LatestPriceDrop(ctx, item.ItemID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			hasAlert = true
			lastAlertPrice = last.Price
		}
	}

	if !ShouldAlertPriceDrop(item.TargetPrice, change.Previous, price, hasAlert, lastAlertPrice) {
		return nil, nil
	}

	alert, _, err := m.alerts.Create(ctx, item, models.AlertPriceDrop,
		PriceDropMessage(change.Previous, price, *item.TargetPrice),
		AlertOptions{Price: &price, DeferDelivery: deferDelivery})
	return alert, err
}

// ShouldAlertPriceDrop decides whether a new observation deserves a
// price_drop alert. The price must be at or below target and one of:
// the previous price was unknown or above target; no price_drop alert has
// been raised for the item yet; or the price is below the one on the latest
// price_drop alert.
func ShouldAlertPriceDrop(target, previous *float64, price float64, hasAlert bool, lastAlertPrice *float64) bool {
	if target == nil || price > *target {
		return false
	}
	if previous == nil || *previous > *target {
		return true
	}
	if !hasAlert {
		return true
	}
	return lastAlertPrice != nil && price < *lastAlertPrice
}

// PriceDropMessage renders the alert text for a price drop
func PriceDropMessage(previous *float64, price, target float64) string {
	if previous == nil || *previous <= 0 {
		return fmt.Sprintf("Price is now %s (target %s)",
			notify.FormatPrice(price), notify.FormatPrice(target))
	}
	pct := (*previous - price) / *previous * 100
	return fmt.Sprintf("Price dropped %s → %s (-%.1f%%, target %s)",
		notify.FormatPrice(*previous), notify.FormatPrice(price), pct, notify.FormatPrice(target))
}

func (m *Monitor) lock(itemID string) func() {
	m.locksMu.Lock()
	l, ok := m.locks[itemID]
	if !ok {
		l = &itemLock{}
		m.locks[itemID] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, itemID)
		}
		m.locksMu.Unlock()
	}
}

// heldLocks is the number of items with a check holding or awaiting a lock
func (m *Monitor) heldLocks() int {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	return len(m.locks)
}
