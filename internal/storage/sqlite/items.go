// ABOUTME: Item storage operations for SQLite
// ABOUTME: CRUD for tracked products plus monitor bookkeeping (failures, check times)
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

// ItemStore handles item persistence
type ItemStore struct {
	db *DB
}

// NewItemStore creates a new ItemStore
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

// ItemFilter narrows List results
type ItemFilter struct {
	ActiveOnly bool
	ExcludeID  string
}

var itemColumns = []string{
	"id", "name", "url", "description", "image_url",
	"current_price", "target_price", "is_active",
	"embedding", "embedding_key",
	"last_checked_at", "consecutive_failures", "last_error",
	"created_at", "updated_at",
}

// Create inserts a new item
func (s *ItemStore) Create(ctx context.Context, item *models.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, url, description, image_url,
			current_price, target_price, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ItemID, item.Name, item.URL, item.Description, item.ImageURL,
		nullFloat(item.CurrentPrice), nullFloat(item.TargetPrice), item.IsActive,
		item.CreatedAt.UTC(), item.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Get retrieves an item by ID
func (s *ItemStore) Get(ctx context.Context, itemID string) (*models.Item, error) {
	query, args, err := sq.Select(itemColumns...).From("items").Where(sq.Eq{"id": itemID}).ToSql()
	if err != nil {
		return nil, err
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns items newest first
func (s *ItemStore) List(ctx context.Context, filter ItemFilter) ([]*models.Item, error) {
	builder := sq.Select(itemColumns...).From("items").OrderBy("created_at DESC", "id")
	if filter.ActiveOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	if filter.ExcludeID != "" {
		builder = builder.Where(sq.NotEq{"id": filter.ExcludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update writes the user-editable fields of an item. Prices observed by the
// monitor are written through HistoryStore.RecordPrice instead.
func (s *ItemStore) Update(ctx context.Context, item *models.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, description = ?, image_url = ?,
			target_price = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, item.Name, item.Description, item.ImageURL,
		nullFloat(item.TargetPrice), item.IsActive, item.UpdatedAt.UTC(), item.ItemID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return expectOneRow(res, "item", item.ItemID)
}

// Delete removes an item; its history and alerts go with it
func (s *ItemStore) Delete(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return expectOneRow(res, "item", itemID)
}

// RecordFailure notes a failed check without touching the price
func (s *ItemStore) RecordFailure(ctx context.Context, itemID, reason string, at time.Time) (int, error) {
	var failures int
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE items SET consecutive_failures = consecutive_failures + 1,
				last_error = ?, last_checked_at = ?
			WHERE id = ?
		`, reason, at.UTC(), itemID)
		if err != nil {
			return err
		}
		if err := expectOneRow(res, "item", itemID); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			"SELECT consecutive_failures FROM items WHERE id = ?", itemID).Scan(&failures)
	})
	if err != nil {
		return 0, fmt.Errorf("record failure: %w", err)
	}
	return failures, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item        models.Item
		current     sql.NullFloat64
		target      sql.NullFloat64
		blob        []byte
		lastChecked sql.NullTime
	)

	err := row.Scan(&item.ItemID, &item.Name, &item.URL, &item.Description, &item.ImageURL,
		&current, &target, &item.IsActive,
		&blob, &item.EmbeddingKey,
		&lastChecked, &item.ConsecutiveFailures, &item.LastError,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.CurrentPrice = floatPtr(current)
	item.TargetPrice = floatPtr(target)
	item.Embedding = blobToVector(blob)
	if lastChecked.Valid {
		t := lastChecked.Time
		item.LastCheckedAt = &t
	}
	return &item, nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
