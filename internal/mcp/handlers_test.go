// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Drives handlers with in-memory storage and a stub fetcher and checks the JSON responses
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/pricewatch/internal/core"
	"github.com/harper/pricewatch/internal/logging"
	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

type stubFetcher struct {
	price float64
}

func (f stubFetcher) Fetch(ctx context.Context, url string) (models.Product, error) {
	return models.Product{Price: models.Float(f.price), Title: "stub"}, nil
}

func newTestHandlers(t *testing.T, price float64) *Handlers {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tracker := core.NewTracker(store, core.Options{
		Fetcher: stubFetcher{price: price},
		Logger:  logging.Discard(),
	})
	return NewHandlers(tracker)
}

func newRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func decode(t *testing.T, result *mcp.CallToolResult, v interface{}) {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error: %s", resultText(t, result))
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), v); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
}

func addItem(t *testing.T, h *Handlers, args map[string]interface{}) models.Item {
	t.Helper()
	result, err := h.AddItem(context.Background(), newRequest(args))
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	var item models.Item
	decode(t, result, &item)
	return item
}

func TestRegisterTools(t *testing.T) {
	server := mcpserver.NewMCPServer("pricewatch-test", "0.0.0")
	h := RegisterTools(server, newTestHandlers(t, 1).tracker)
	if h == nil {
		t.Fatal("RegisterTools() returned nil handlers")
	}
}

func TestAddItemAndHistory(t *testing.T) {
	h := newTestHandlers(t, 75)
	ctx := context.Background()

	item := addItem(t, h, map[string]interface{}{
		"url":           "https://shop.example.com/headphones",
		"name":          "Headphones",
		"current_price": 100.0,
		"target_price":  80.0,
	})
	if item.ItemID == "" || item.CurrentPrice == nil || *item.CurrentPrice != 100 {
		t.Fatalf("item = %+v", item)
	}

	result, err := h.CheckItem(ctx, newRequest(map[string]interface{}{"item_id": item.ItemID}))
	if err != nil {
		t.Fatalf("CheckItem() error = %v", err)
	}
	var check core.CheckResult
	decode(t, result, &check)
	if check.State != core.StateRecorded || check.Alert == nil {
		t.Errorf("check = %+v", check)
	}

	result, _ = h.GetPriceHistory(ctx, newRequest(map[string]interface{}{"item_id": item.ItemID}))
	var history struct {
		Count   int                 `json:"count"`
		History []models.PricePoint `json:"history"`
	}
	decode(t, result, &history)
	if history.Count != 2 || history.History[1].Price != 75 {
		t.Errorf("history = %+v", history)
	}
}

func TestAddItemValidation(t *testing.T) {
	h := newTestHandlers(t, 1)
	ctx := context.Background()

	result, _ := h.AddItem(ctx, newRequest(map[string]interface{}{}))
	if !result.IsError {
		t.Error("missing url should be an error")
	}

	result, _ = h.AddItem(ctx, newRequest(map[string]interface{}{"url": "not a url"}))
	if !result.IsError || !strings.Contains(resultText(t, result), "invalid input") {
		t.Errorf("bad url result = %s", resultText(t, result))
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	h := newTestHandlers(t, 1)
	ctx := context.Background()
	item := addItem(t, h, map[string]interface{}{"url": "https://shop.example.com/a", "name": "A"})

	result, _ := h.UpdateItem(ctx, newRequest(map[string]interface{}{
		"item_id":      item.ItemID,
		"target_price": 42.0,
		"active":       false,
	}))
	var updated models.Item
	decode(t, result, &updated)
	if updated.TargetPrice == nil || *updated.TargetPrice != 42 || updated.IsActive {
		t.Errorf("updated = %+v", updated)
	}

	result, _ = h.ListItems(ctx, newRequest(nil))
	var list struct {
		Count int `json:"count"`
	}
	decode(t, result, &list)
	if list.Count != 0 {
		t.Errorf("active count = %d, want 0", list.Count)
	}
	result, _ = h.ListItems(ctx, newRequest(map[string]interface{}{"include_inactive": true}))
	decode(t, result, &list)
	if list.Count != 1 {
		t.Errorf("all count = %d, want 1", list.Count)
	}

	result, _ = h.RemoveItem(ctx, newRequest(map[string]interface{}{"item_id": item.ItemID}))
	if result.IsError {
		t.Fatalf("RemoveItem error: %s", resultText(t, result))
	}
	result, _ = h.RemoveItem(ctx, newRequest(map[string]interface{}{"item_id": item.ItemID}))
	if !result.IsError || !strings.Contains(resultText(t, result), "not found") {
		t.Errorf("second remove = %s", resultText(t, result))
	}
}

func TestAlertTools(t *testing.T) {
	h := newTestHandlers(t, 5)
	ctx := context.Background()
	item := addItem(t, h, map[string]interface{}{
		"url": "https://shop.example.com/b", "name": "B", "target_price": 10.0,
	})
	if _, err := h.CheckItem(ctx, newRequest(map[string]interface{}{"item_id": item.ItemID})); err != nil {
		t.Fatalf("CheckItem() error = %v", err)
	}

	result, _ := h.ListAlerts(ctx, newRequest(map[string]interface{}{"unread_only": true}))
	var alerts struct {
		Count  int             `json:"count"`
		Alerts []*models.Alert `json:"alerts"`
	}
	decode(t, result, &alerts)
	if alerts.Count != 1 {
		t.Fatalf("unread alerts = %d, want 1", alerts.Count)
	}
	alertID := alerts.Alerts[0].AlertID

	result, _ = h.MarkAlertRead(ctx, newRequest(map[string]interface{}{"alert_id": alertID}))
	if result.IsError {
		t.Fatalf("MarkAlertRead error: %s", resultText(t, result))
	}
	result, _ = h.MarkAllAlertsRead(ctx, newRequest(nil))
	var marked struct {
		Marked int64 `json:"marked"`
	}
	decode(t, result, &marked)
	if marked.Marked != 0 {
		t.Errorf("marked = %d, want 0", marked.Marked)
	}

	result, _ = h.DeleteAlert(ctx, newRequest(map[string]interface{}{"alert_id": alertID}))
	if result.IsError {
		t.Fatalf("DeleteAlert error: %s", resultText(t, result))
	}
	result, _ = h.DeleteAlert(ctx, newRequest(map[string]interface{}{"alert_id": alertID}))
	if !result.IsError {
		t.Error("deleting a missing alert should be an error")
	}
}

func TestSimilarityTools(t *testing.T) {
	h := newTestHandlers(t, 1)
	ctx := context.Background()
	item := addItem(t, h, map[string]interface{}{
		"url": "https://shop.example.com/c", "name": "C", "current_price": 10.0,
	})

	// Without an embedder every similarity tool answers with an empty list.
	for name, handler := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"similar":      h.FindSimilarItems,
		"deals":        h.FindBetterDeals,
		"alternatives": h.FindAlternatives,
	} {
		result, err := handler(ctx, newRequest(map[string]interface{}{"item_id": item.ItemID}))
		if err != nil {
			t.Fatalf("%s error = %v", name, err)
		}
		var body struct {
			Count int `json:"count"`
		}
		decode(t, result, &body)
		if body.Count != 0 {
			t.Errorf("%s count = %d, want 0", name, body.Count)
		}
	}

	result, _ := h.FindSimilarItems(ctx, newRequest(map[string]interface{}{
		"item_id": item.ItemID, "min_similarity": 2.0,
	}))
	if !result.IsError || !strings.Contains(resultText(t, result), "invalid input") {
		t.Errorf("out of range min_similarity accepted")
	}
}
