// ABOUTME: Tracker is the operation surface over items, history, alerts, and similarity
// ABOUTME: CLI commands and MCP handlers call it; it owns the monitor and similarity engine
package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harper/pricewatch/internal/llm"
	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/notify"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

// Options wires the tracker's collaborators and tuning
type Options struct {
	Fetcher  Fetcher
	Embedder llm.Embedder
	Notifier notify.Notifier
	Logger   *slog.Logger

	MaxConcurrentChecks int
	FetchTimeout        time.Duration
	SimilarityThreshold float64
	SavingsThreshold    float64
	EmbedTimeout        time.Duration
	SendTimeout         time.Duration

	// ScrapeOnCreate fills a new item's missing name, price, or image from
	// its page before saving
	ScrapeOnCreate bool
}

// Tracker exposes every user-facing operation
type Tracker struct {
	store          *sqlite.Storage
	fetcher        Fetcher
	alerts         *AlertManager
	monitor        *Monitor
	similarity     *SimilarityEngine
	logger         *slog.Logger
	fetchTimeout   time.Duration
	scrapeOnCreate bool
	threshold      float64
}

// NewTracker builds a Tracker over store
func NewTracker(store *sqlite.Storage, opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = 0.75
	}
	if opts.SavingsThreshold <= 0 {
		opts.SavingsThreshold = 0.10
	}

	alerts := NewAlertManager(store, opts.Notifier, opts.SendTimeout, logger.With("component", "alerts"))
	monitor := NewMonitor(store, opts.Fetcher, alerts, MonitorConfig{
		MaxConcurrent: opts.MaxConcurrentChecks,
		FetchTimeout:  opts.FetchTimeout,
	}, logger.With("component", "monitor"))
	similarity := NewSimilarityEngine(store, opts.Embedder, alerts, SimilarityConfig{
		Threshold:        opts.SimilarityThreshold,
		SavingsThreshold: opts.SavingsThreshold,
		MaxConcurrent:    opts.MaxConcurrentChecks,
		EmbedTimeout:     opts.EmbedTimeout,
	}, logger.With("component", "similarity"))

	return &Tracker{
		store:          store,
		fetcher:        opts.Fetcher,
		alerts:         alerts,
		monitor:        monitor,
		similarity:     similarity,
		logger:         logger,
		fetchTimeout:   monitor.cfg.FetchTimeout,
		scrapeOnCreate: opts.ScrapeOnCreate && opts.Fetcher != nil,
		threshold:      opts.SimilarityThreshold,
	}
}

// Monitor returns the price monitor, for wiring a Scheduler
func (t *Tracker) Monitor() *Monitor {
	return t.monitor
}

// DefaultSimilarity is the configured similarity threshold
func (t *Tracker) DefaultSimilarity() float64 {
	return t.threshold
}

// ListItems returns tracked items newest first
func (t *Tracker) ListItems(ctx context.Context, activeOnly bool) ([]*models.Item, error) {
	return t.store.Items().List(ctx, sqlite.ItemFilter{ActiveOnly: activeOnly})
}

// GetItem returns one item
func (t *Tracker) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	item, err := t.store.Items().Get(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, itemID)
	}
	return item, nil
}

// CreateItem validates and stores a new item. A supplied current price is
// also written as the first history point.
func (t *Tracker) CreateItem(ctx context.Context, in models.ItemInput) (*models.Item, error) {
	if err := models.ValidateURL(in.URL); err != nil {
		return nil, err
	}
	if t.scrapeOnCreate && (in.Name == "" || in.CurrentPrice == nil || in.ImageURL == "") {
		t.fillFromPage(ctx, &in)
	}

	item, err := models.NewItem(in)
	if err != nil {
		return nil, err
	}
	initial := item.CurrentPrice
	item.CurrentPrice = nil

	if err := t.store.Items().Create(ctx, item); err != nil {
		return nil, err
	}
	if initial != nil {
		change, err := t.store.History().RecordPrice(ctx, item.ItemID, *initial, item.CreatedAt)
		if err != nil {
			return nil, err
		}
		item = change.Item
	}

	t.logger.Info("item created", "item_id", item.ItemID, "url", item.URL)
	return item, nil
}

func (t *Tracker) fillFromPage(ctx context.Context, in *models.ItemInput) {
	fetchCtx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	product, err := t.fetcher.Fetch(fetchCtx, in.URL)
	if product.Title != "" && in.Name == "" {
		in.Name = product.Title
	}
	if product.Description != "" && in.Description == "" {
		in.Description = product.Description
	}
	if product.ImageURL != "" && in.ImageURL == "" {
		in.ImageURL = product.ImageURL
	}
	if product.Price != nil && in.CurrentPrice == nil {
		in.CurrentPrice = product.Price
	}
	if err != nil {
		t.logger.Warn("initial scrape incomplete", "url", in.URL, "error", err)
	}
}

// UpdateItem applies a patch to an item
func (t *Tracker) UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) (*models.Item, error) {
	item, err := t.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	text := item.EmbeddingText()
	if err := item.Apply(patch); err != nil {
		return nil, err
	}
	if err := t.store.Items().Update(ctx, item); err != nil {
		return nil, notFound(err, ErrItemNotFound, itemID)
	}
	if item.EmbeddingText() != text && len(item.Embedding) > 0 {
		if err := t.store.Items().ClearEmbedding(ctx, itemID); err != nil {
			t.logger.Warn("clear embedding failed", "item_id", itemID, "error", err)
		}
		item.Embedding = nil
		item.EmbeddingKey = ""
	}
	return item, nil
}

// SetActive pauses or resumes monitoring of an item
func (t *Tracker) SetActive(ctx context.Context, itemID string, active bool) (*models.Item, error) {
	return t.UpdateItem(ctx, itemID, models.ItemPatch{IsActive: &active})
}

// DeleteItem removes an item with its history and alerts
func (t *Tracker) DeleteItem(ctx context.Context, itemID string) error {
	if err := t.store.Items().Delete(ctx, itemID); err != nil {
		return notFound(err, ErrItemNotFound, itemID)
	}
	t.logger.Info("item deleted", "item_id", itemID)
	return nil
}

// GetHistory returns an item's price history oldest first
func (t *Tracker) GetHistory(ctx context.Context, itemID string) ([]models.PricePoint, error) {
	if _, err := t.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return t.store.History().List(ctx, itemID)
}

// ListAlerts returns alerts newest first
func (t *Tracker) ListAlerts(ctx context.Context, unreadOnly bool) ([]*models.Alert, error) {
	return t.alerts.List(ctx, unreadOnly)
}

// MarkAlertRead flags one alert as read
func (t *Tracker) MarkAlertRead(ctx context.Context, alertID string) error {
	return t.alerts.MarkRead(ctx, alertID)
}

// MarkAllRead flags every alert as read
func (t *Tracker) MarkAllRead(ctx context.Context) (int64, error) {
	return t.alerts.MarkAllRead(ctx)
}

// DeleteAlert removes one alert
func (t *Tracker) DeleteAlert(ctx context.Context, alertID string) error {
	return t.alerts.Delete(ctx, alertID)
}

// GetSimilar returns items similar to itemID at or above minSimilarity
func (t *Tracker) GetSimilar(ctx context.Context, itemID string, minSimilarity float64) ([]models.SimilarItem, error) {
	return t.similarity.Similar(ctx, itemID, minSimilarity)
}

// GetBetterDeals returns cheaper similar items
func (t *Tracker) GetBetterDeals(ctx context.Context, itemID string) ([]models.Deal, error) {
	return t.similarity.BetterDeals(ctx, itemID)
}

// FindAlternatives raises similar_item alerts for new better deals
func (t *Tracker) FindAlternatives(ctx context.Context, itemID string) ([]*models.Alert, error) {
	return t.similarity.FindAlternatives(ctx, itemID)
}

// CheckItem checks one item's price now
func (t *Tracker) CheckItem(ctx context.Context, itemID string) (*CheckResult, error) {
	if t.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	return t.monitor.CheckItem(ctx, itemID)
}

// CheckAll checks every active item now
func (t *Tracker) CheckAll(ctx context.Context) (*CycleReport, error) {
	if t.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	return t.monitor.CheckAll(ctx)
}
