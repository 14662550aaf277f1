// ABOUTME: Alert storage operations for SQLite
// ABOUTME: Create, list, mark read, delete, and dedupe lookups for alerts
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/harper/pricewatch/internal/models"
)

// AlertStore handles alert persistence
type AlertStore struct {
	db *DB
}

// NewAlertStore creates a new AlertStore
func NewAlertStore(db *DB) *AlertStore {
	return &AlertStore{db: db}
}

// AlertFilter narrows List results
type AlertFilter struct {
	UnreadOnly bool
	ItemID     string
	Type       models.AlertType
	Limit      uint64
}

var alertColumns = []string{
	"id", "item_id", "alert_type", "message", "price", "related_item_id", "sent_at", "is_read",
}

// Create inserts a new alert
func (s *AlertStore) Create(ctx context.Context, alert *models.Alert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, item_id, alert_type, message, price, related_item_id, sent_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.AlertID, alert.ItemID, string(alert.Type), alert.Message,
		nullFloat(alert.Price), nullString(alert.RelatedItemID), alert.SentAt.UTC(), alert.IsRead)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// Get retrieves an alert by ID
func (s *AlertStore) Get(ctx context.Context, alertID string) (*models.Alert, error) {
	query, args, err := sq.Select(alertColumns...).From("alerts").Where(sq.Eq{"id": alertID}).ToSql()
	if err != nil {
		return nil, err
	}
	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}
	return alert, err
}

// List returns alerts newest first
func (s *AlertStore) List(ctx context.Context, filter AlertFilter) ([]*models.Alert, error) {
	builder := sq.Select(alertColumns...).From("alerts").OrderBy("sent_at DESC", "id DESC")
	if filter.UnreadOnly {
		builder = builder.Where(sq.Eq{"is_read": false})
	}
	if filter.ItemID != "" {
		builder = builder.Where(sq.Eq{"item_id": filter.ItemID})
	}
	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"alert_type": string(filter.Type)})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
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

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// LatestPriceDrop returns the newest price_drop alert for an item, or nil
// when none exists
func (s *AlertStore) LatestPriceDrop(ctx context.Context, itemID string) (*models.Alert, error) {
	alerts, err := s.List(ctx, AlertFilter{ItemID: itemID, Type: models.AlertPriceDrop, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, nil
	}
	return alerts[0], nil
}

// HasSimilar reports whether a similar_item alert already links the pair
func (s *AlertStore) HasSimilar(ctx context.Context, itemID, relatedID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE item_id = ? AND related_item_id = ? AND alert_type = ?
	`, itemID, relatedID, string(models.AlertSimilarItem)).Scan(&n)
	return n > 0, err
}

// MarkRead flags a single alert as read
func (s *AlertStore) MarkRead(ctx context.Context, alertID string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE alerts SET is_read = 1 WHERE id = ?", alertID)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	return expectOneRow(res, "alert", alertID)
}

// MarkAllRead flags every unread alert and returns how many changed
func (s *AlertStore) MarkAllRead(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE alerts SET is_read = 1 WHERE is_read = 0")
	if err != nil {
		return 0, fmt.Errorf("mark all alerts read: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes an alert
func (s *AlertStore) Delete(ctx context.Context, alertID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM alerts WHERE id = ?", alertID)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	return expectOneRow(res, "alert", alertID)
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		alert     models.Alert
		alertType string
		price     sql.NullFloat64
		related   sql.NullString
	)
	err := row.Scan(&alert.AlertID, &alert.ItemID, &alertType, &alert.Message,
		&price, &related, &alert.SentAt, &alert.IsRead)
	if err != nil {
		return nil, err
	}
	alert.Type = models.AlertType(alertType)
	alert.Price = floatPtr(price)
	if related.Valid {
		alert.RelatedItemID = related.String
	}
	return &alert, nil
}
