// ABOUTME: Tests for the unified Storage facade
// ABOUTME: Verifies constructors wire every store to the same database
package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStorageInMemory(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.Items() == nil || store.History() == nil || store.Alerts() == nil {
		t.Fatal("all stores should be initialized")
	}
	if store.DB().Path() != ":memory:" {
		t.Errorf("Path() = %q, want :memory:", store.DB().Path())
	}
}

func TestStorageWithPath_SharedDatabase(t *testing.T) {
	store, err := NewStorageWithPath(filepath.Join(t.TempDir(), "pw.db"))
	if err != nil {
		t.Fatalf("NewStorageWithPath() error = %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	item := newTestItem(t, "Shared", nil, nil)
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.History().RecordPrice(ctx, item.ItemID, 12.5, item.CreatedAt); err != nil {
		t.Fatalf("RecordPrice() through facade error = %v", err)
	}
}
