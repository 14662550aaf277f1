// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Single entry point for items, price history, and alerts
package sqlite

import (
	"fmt"
)

// Storage owns the database handle and the per-table stores
type Storage struct {
	db      *DB
	items   *ItemStore
	history *HistoryStore
	alerts  *AlertStore
}

// NewStorage initializes storage at the default XDG location
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:      db,
		items:   NewItemStore(db),
		history: NewHistoryStore(db),
		alerts:  NewAlertStore(db),
	}
}

// Items returns the item store
func (s *Storage) Items() *ItemStore { return s.items }

// History returns the price history store
func (s *Storage) History() *HistoryStore { return s.history }

// Alerts returns the alert store
func (s *Storage) Alerts() *AlertStore { return s.alerts }

// DB returns the underlying database
func (s *Storage) DB() *DB { return s.db }

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}
