// ABOUTME: MCP tool handler implementations for the pricewatch server
// ABOUTME: Each handler maps tool arguments onto a Tracker call and returns JSON text
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/pricewatch/internal/core"
	"github.com/harper/pricewatch/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	tracker *core.Tracker
}

// NewHandlers creates handlers over a tracker
func NewHandlers(tracker *core.Tracker) *Handlers {
	return &Handlers{tracker: tracker}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// errorResult turns a tracker error into a tool error with a stable prefix
func errorResult(action string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, core.ErrItemNotFound), errors.Is(err, core.ErrAlertNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	case errors.Is(err, core.ErrInvalidItem), errors.Is(err, core.ErrInvalidArgument):
		return mcp.NewToolResultError(fmt.Sprintf("invalid input: %v", err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err))
	}
}

// optionalFloat returns a pointer to a numeric argument when it was supplied
func optionalFloat(request mcp.CallToolRequest, key string) *float64 {
	if _, ok := request.GetArguments()[key]; !ok {
		return nil
	}
	v := request.GetFloat(key, 0)
	return &v
}

func hasArgument(request mcp.CallToolRequest, key string) bool {
	_, ok := request.GetArguments()[key]
	return ok
}

// ListItems handles the list_items tool
func (h *Handlers) ListItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activeOnly := !request.GetBool("include_inactive", false)
	items, err := h.tracker.ListItems(ctx, activeOnly)
	if err != nil {
		return errorResult("list items", err), nil
	}
	return jsonResult(map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// AddItem handles the add_item tool
func (h *Handlers) AddItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required and must be a string"), nil
	}

	item, err := h.tracker.CreateItem(ctx, models.ItemInput{
		Name:         request.GetString("name", ""),
		URL:          url,
		Description:  request.GetString("description", ""),
		CurrentPrice: optionalFloat(request, "current_price"),
		TargetPrice:  optionalFloat(request, "target_price"),
	})
	if err != nil {
		return errorResult("add item", err), nil
	}
	return jsonResult(item)
}

// UpdateItem handles the update_item tool
func (h *Handlers) UpdateItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}

	var patch models.ItemPatch
	if hasArgument(request, "name") {
		name := request.GetString("name", "")
		patch.Name = &name
	}
	patch.TargetPrice = optionalFloat(request, "target_price")
	patch.ClearTarget = request.GetBool("clear_target", false)
	if hasArgument(request, "active") {
		active := request.GetBool("active", true)
		patch.IsActive = &active
	}

	item, err := h.tracker.UpdateItem(ctx, itemID, patch)
	if err != nil {
		return errorResult("update item", err), nil
	}
	return jsonResult(item)
}

// RemoveItem handles the remove_item tool
func (h *Handlers) RemoveItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	if err := h.tracker.DeleteItem(ctx, itemID); err != nil {
		return errorResult("remove item", err), nil
	}
	return jsonResult(map[string]interface{}{"item_id": itemID, "deleted": true})
}

// GetPriceHistory handles the get_price_history tool
func (h *Handlers) GetPriceHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	history, err := h.tracker.GetHistory(ctx, itemID)
	if err != nil {
		return errorResult("get price history", err), nil
	}
	return jsonResult(map[string]interface{}{
		"item_id": itemID,
		"history": history,
		"count":   len(history),
	})
}

// CheckItem handles the check_item tool
func (h *Handlers) CheckItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	result, err := h.tracker.CheckItem(ctx, itemID)
	if err != nil {
		return errorResult("check item", err), nil
	}
	return jsonResult(result)
}

// ListAlerts handles the list_alerts tool
func (h *Handlers) ListAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alerts, err := h.tracker.ListAlerts(ctx, request.GetBool("unread_only", false))
	if err != nil {
		return errorResult("list alerts", err), nil
	}
	return jsonResult(map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// MarkAlertRead handles the mark_alert_read tool
func (h *Handlers) MarkAlertRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alertID, err := request.RequireString("alert_id")
	if err != nil {
		return mcp.NewToolResultError("alert_id argument is required and must be a string"), nil
	}
	if err := h.tracker.MarkAlertRead(ctx, alertID); err != nil {
		return errorResult("mark alert read", err), nil
	}
	return jsonResult(map[string]interface{}{"alert_id": alertID, "is_read": true})
}

// MarkAllAlertsRead handles the mark_all_alerts_read tool
func (h *Handlers) MarkAllAlertsRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := h.tracker.MarkAllRead(ctx)
	if err != nil {
		return errorResult("mark all alerts read", err), nil
	}
	return jsonResult(map[string]interface{}{"marked": n})
}

// DeleteAlert handles the delete_alert tool
func (h *Handlers) DeleteAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alertID, err := request.RequireString("alert_id")
	if err != nil {
		return mcp.NewToolResultError("alert_id argument is required and must be a string"), nil
	}
	if err := h.tracker.DeleteAlert(ctx, alertID); err != nil {
		return errorResult("delete alert", err), nil
	}
	return jsonResult(map[string]interface{}{"alert_id": alertID, "deleted": true})
}

// FindSimilarItems handles the find_similar_items tool
func (h *Handlers) FindSimilarItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	minSimilarity := request.GetFloat("min_similarity", h.tracker.DefaultSimilarity())

	similar, err := h.tracker.GetSimilar(ctx, itemID, minSimilarity)
	if err != nil {
		return errorResult("find similar items", err), nil
	}
	return jsonResult(map[string]interface{}{
		"item_id":        itemID,
		"min_similarity": minSimilarity,
		"similar":        similar,
		"count":          len(similar),
	})
}

// FindBetterDeals handles the find_better_deals tool
func (h *Handlers) FindBetterDeals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	deals, err := h.tracker.GetBetterDeals(ctx, itemID)
	if err != nil {
		return errorResult("find better deals", err), nil
	}
	return jsonResult(map[string]interface{}{
		"item_id": itemID,
		"deals":   deals,
		"count":   len(deals),
	})
}

// FindAlternatives handles the find_alternatives tool
func (h *Handlers) FindAlternatives(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	alerts, err := h.tracker.FindAlternatives(ctx, itemID)
	if err != nil {
		return errorResult("find alternatives", err), nil
	}
	return jsonResult(map[string]interface{}{
		"item_id":    itemID,
		"new_alerts": alerts,
		"count":      len(alerts),
	})
}
