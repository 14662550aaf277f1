// ABOUTME: Similarity engine that ranks tracked items by embedding cosine similarity
// ABOUTME: Finds cheaper alternatives and turns them into similar_item alerts
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harper/pricewatch/internal/llm"
	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/notify"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

// SimilarityConfig tunes the similarity engine
type SimilarityConfig struct {
	Threshold        float64 // minimum cosine similarity for deals and alternatives
	SavingsThreshold float64 // minimum savings as a fraction of the query price
	MaxConcurrent    int     // parallel embedding requests when warming the pool
	EmbedTimeout     time.Duration
}

// SimilarityEngine answers similarity questions over tracked items
type SimilarityEngine struct {
	store    *sqlite.Storage
	embedder llm.Embedder
	alerts   *AlertManager
	cfg      SimilarityConfig
	logger   *slog.Logger
}

// NewSimilarityEngine creates a SimilarityEngine
func NewSimilarityEngine(store *sqlite.Storage, embedder llm.Embedder, alerts *AlertManager, cfg SimilarityConfig, logger *slog.Logger) *SimilarityEngine {
	if embedder == nil {
		embedder = llm.Disabled{Reason: "no embedder configured"}
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 30 * time.Second
	}
	return &SimilarityEngine{
		store:    store,
		embedder: embedder,
		alerts:   alerts,
		cfg:      cfg,
		logger:   logger,
	}
}

// Similar ranks active items by similarity to itemID, keeping those at or
// above minSimilarity. An unavailable embedder yields an empty result.
func (e *SimilarityEngine) Similar(ctx context.Context, itemID string, minSimilarity float64) ([]models.SimilarItem, error) {
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, fmt.Errorf("%w: min similarity must be 0-1, got %f", ErrInvalidArgument, minSimilarity)
	}

	query, err := e.store.Items().Get(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, itemID)
	}

	if !e.ensureEmbedding(ctx, query) {
		return []models.SimilarItem{}, nil
	}

	pool, err := e.store.Items().List(ctx, sqlite.ItemFilter{ActiveOnly: true, ExcludeID: itemID})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrent)
	for _, candidate := range pool {
		g.Go(func() error {
			e.ensureEmbedding(ctx, candidate)
			return nil
		})
	}
	_ = g.Wait()

	return RankSimilar(query, pool, minSimilarity), nil
}

// BetterDeals returns similar items that are at least SavingsThreshold
// cheaper than itemID, biggest savings first
func (e *SimilarityEngine) BetterDeals(ctx context.Context, itemID string) ([]models.Deal, error) {
	query, err := e.store.Items().Get(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, itemID)
	}
	if query.CurrentPrice == nil || *query.CurrentPrice <= 0 {
		return []models.Deal{}, nil
	}

	similar, err := e.Similar(ctx, itemID, e.cfg.Threshold)
	if err != nil {
		return nil, err
	}
	return FilterBetterDeals(query, similar, e.cfg.SavingsThreshold), nil
}

// FindAlternatives raises a similar_item alert for each better deal that
// has not been alerted for this pair before, and returns the new alerts
func (e *SimilarityEngine) FindAlternatives(ctx context.Context, itemID string) ([]*models.Alert, error) {
	deals, err := e.BetterDeals(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return []*models.Alert{}, nil
	}

	query, err := e.store.Items().Get(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, itemID)
	}

	created := make([]*models.Alert, 0, len(deals))
	for _, deal := range deals {
		price := *deal.Item.CurrentPrice
		alert, isNew, err := e.alerts.Create(ctx, query, models.AlertSimilarItem,
			AlternativeMessage(deal), AlertOptions{Price: &price, RelatedItemID: deal.Item.ItemID})
		if err != nil {
			return created, fmt.Errorf("create alternative alert: %w", err)
		}
		if isNew {
			created = append(created, alert)
		}
	}

	e.logger.Info("alternatives found", "item_id", itemID, "deals", len(deals), "new_alerts", len(created))
	return created, nil
}

// ensureEmbedding makes sure item carries a vector for its current text,
// computing and caching one if needed. It reports whether a vector is present.
// A vector computed from older text is dropped when no fresh one can be had.
func (e *SimilarityEngine) ensureEmbedding(ctx context.Context, item *models.Item) bool {
	text := item.EmbeddingText()
	if text == "" {
		item.Embedding = nil
		return false
	}
	key := EmbeddingKey(text)
	if len(item.Embedding) > 0 && item.EmbeddingKey == key {
		return true
	}
	item.Embedding = nil
	item.EmbeddingKey = ""

	embedCtx, cancel := context.WithTimeout(ctx, e.cfg.EmbedTimeout)
	defer cancel()

	result := e.embedder.Embed(embedCtx, text)
	vector, ok := result.Vector()
	if !ok {
		e.logger.Debug("embedding unavailable", "item_id", item.ItemID, "reason", result.Reason())
		return false
	}

	if err := e.store.Items().SetEmbedding(ctx, item.ItemID, vector, key); err != nil {
		e.logger.Warn("cache embedding failed", "item_id", item.ItemID, "error", err)
	}
	item.Embedding = vector
	item.EmbeddingKey = key
	return true
}

// EmbeddingKey identifies the text an embedding was computed from
func EmbeddingKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// RankSimilar scores every pool item against query by cosine similarity.
// The query itself and items without embeddings are skipped. Results at or
// above minSimilarity are returned highest first.
func RankSimilar(query *models.Item, pool []*models.Item, minSimilarity float64) []models.SimilarItem {
	results := make([]models.SimilarItem, 0)
	if len(query.Embedding) == 0 {
		return results
	}

	for _, candidate := range pool {
		if candidate.ItemID == query.ItemID || len(candidate.Embedding) == 0 {
			continue
		}
		score := sqlite.CosineSimilarity(query.Embedding, candidate.Embedding)
		if score >= minSimilarity {
			results = append(results, models.SimilarItem{Item: candidate, Similarity: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Item.ItemID < results[j].Item.ItemID
	})
	return results
}

// FilterBetterDeals keeps priced candidates whose savings relative to the
// query price reach savingsThreshold, ordered by savings percent descending
func FilterBetterDeals(query *models.Item, similar []models.SimilarItem, savingsThreshold float64) []models.Deal {
	deals := make([]models.Deal, 0)
	if query.CurrentPrice == nil || *query.CurrentPrice <= 0 {
		return deals
	}
	base := *query.CurrentPrice

	for _, s := range similar {
		if s.Item.CurrentPrice == nil {
			continue
		}
		candidate := *s.Item.CurrentPrice
		savings := base - candidate
		pct := savings / base
		if savings <= 0 || pct < savingsThreshold {
			continue
		}
		deals = append(deals, models.Deal{
			Item:           s.Item,
			Similarity:     s.Similarity,
			SavingsAmount:  savings,
			SavingsPercent: pct,
		})
	}

	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].SavingsPercent != deals[j].SavingsPercent {
			return deals[i].SavingsPercent > deals[j].SavingsPercent
		}
		return deals[i].Similarity > deals[j].Similarity
	})
	return deals
}

// AlternativeMessage renders the alert text for a better deal
func AlternativeMessage(d models.Deal) string {
	return fmt.Sprintf("Found similar item '%s' for %s (%.0f%% cheaper, save %s)",
		d.Item.DisplayName(), notify.FormatPrice(*d.Item.CurrentPrice),
		d.SavingsPercent*100, notify.FormatPrice(d.SavingsAmount))
}
