// ABOUTME: Price history storage operations for SQLite
// ABOUTME: Appends observations and updates the item's current price in one transaction
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/harper/pricewatch/internal/models"
)

// HistoryStore handles price history persistence
type HistoryStore struct {
	db *DB
}

// NewHistoryStore creates a new HistoryStore
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// PriceChange describes the effect of recording a new observation
type PriceChange struct {
	Item     *models.Item      // item state after the write
	Previous *float64          // current_price before the write
	Point    models.PricePoint // the appended history row
}

// RecordPrice appends an observation and sets it as the item's current
// price. recorded_at never goes backwards for an item: a timestamp earlier
// than the latest stored point is clamped to it.
func (s *HistoryStore) RecordPrice(ctx context.Context, itemID string, price float64, at time.Time) (*PriceChange, error) {
	if price < 0 {
		return nil, fmt.Errorf("price must be non-negative, got %.2f", price)
	}

	change := &PriceChange{}
	at = at.UTC()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var previous sql.NullFloat64
		err := tx.QueryRowContext(ctx,
			"SELECT current_price FROM items WHERE id = ?", itemID).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		change.Previous = floatPtr(previous)

		var last time.Time
		err = tx.QueryRowContext(ctx, `
			SELECT recorded_at FROM price_history
			WHERE item_id = ?
			ORDER BY recorded_at DESC, id DESC
			LIMIT 1
		`, itemID).Scan(&last)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		case at.Before(last):
			at = last.UTC()
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO price_history (item_id, price, recorded_at) VALUES (?, ?, ?)
		`, itemID, price, at)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		change.Point = models.PricePoint{ID: id, ItemID: itemID, Price: price, RecordedAt: at}

		_, err = tx.ExecContext(ctx, `
			UPDATE items SET current_price = ?, updated_at = ?, last_checked_at = ?,
				consecutive_failures = 0, last_error = ''
			WHERE id = ?
		`, price, at, at, itemID)
		if err != nil {
			return err
		}

		query, args, err := sq.Select(itemColumns...).From("items").Where(sq.Eq{"id": itemID}).ToSql()
		if err != nil {
			return err
		}
		change.Item, err = scanItem(tx.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("record price: %w", err)
	}
	return change, nil
}

// List returns the price history of an item ordered oldest first
func (s *HistoryStore) List(ctx context.Context, itemID string) ([]models.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, price, recorded_at
		FROM price_history
		WHERE item_id = ?
		ORDER BY recorded_at ASC, id ASC
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	points := make([]models.PricePoint, 0)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Price, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Count returns the number of observations stored for an item
func (s *HistoryStore) Count(ctx context.Context, itemID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM price_history WHERE item_id = ?", itemID).Scan(&n)
	return n, err
}
