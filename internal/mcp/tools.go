// ABOUTME: MCP tool definitions and registration for the pricewatch server
// ABOUTME: Exposes item, history, alert, and similarity operations as MCP tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/pricewatch/internal/core"
)

func idProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, tracker *core.Tracker) *Handlers {
	handlers := NewHandlers(tracker)

	server.AddTool(mcp.Tool{
		Name:        "list_items",
		Description: "List tracked shopping items with their current and target prices.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"include_inactive": map[string]interface{}{
					"type":        "boolean",
					"description": "Include paused items (default: false)",
					"default":     false,
				},
			},
		},
	}, handlers.ListItems)

	server.AddTool(mcp.Tool{
		Name:        "add_item",
		Description: "Start tracking a product page. A current price, if given, becomes the first point in its price history.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url":         idProperty("Product page URL (http or https)"),
				"name":        idProperty("Display name"),
				"description": idProperty("Optional description, used for similarity matching"),
				"current_price": map[string]interface{}{
					"type":        "number",
					"description": "Known current price",
				},
				"target_price": map[string]interface{}{
					"type":        "number",
					"description": "Alert when the price falls to or below this",
				},
			},
			Required: []string{"url"},
		},
	}, handlers.AddItem)

	server.AddTool(mcp.Tool{
		Name:        "update_item",
		Description: "Change an item's name, target price, or active state. Only provided fields are changed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": idProperty("Item ID"),
				"name":    idProperty("New display name"),
				"target_price": map[string]interface{}{
					"type":        "number",
					"description": "New target price",
				},
				"clear_target": map[string]interface{}{
					"type":        "boolean",
					"description": "Remove the target price",
				},
				"active": map[string]interface{}{
					"type":        "boolean",
					"description": "Pause (false) or resume (true) price checks",
				},
			},
			Required: []string{"item_id"},
		},
	}, handlers.UpdateItem)

	server.AddTool(mcp.Tool{
		Name:        "remove_item",
		Description: "Stop tracking an item and delete its price history and alerts.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"item_id": idProperty("Item ID")},
			Required:   []string{"item_id"},
		},
	}, handlers.RemoveItem)

	server.AddTool(mcp.Tool{
		Name:        "get_price_history",
		Description: "Get every recorded price for an item, oldest first.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"item_id": idProperty("Item ID")},
			Required:   []string{"item_id"},
		},
	}, handlers.GetPriceHistory)

	server.AddTool(mcp.Tool{
		Name:        "check_item",
		Description: "Fetch an item's page now, record the price, and raise a price_drop alert if the target is reached.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"item_id": idProperty("Item ID")},
			Required:   []string{"item_id"},
		},
	}, handlers.CheckItem)

	server.AddTool(mcp.Tool{
		Name:        "list_alerts",
		Description: "List alerts newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"unread_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only unread alerts (default: false)",
					"default":     false,
				},
			},
		},
	}, handlers.ListAlerts)

	server.AddTool(mcp.Tool{
		Name:        "mark_alert_read",
		Description: "Mark one alert as read.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"alert_id": idProperty("Alert ID")},
			Required:   []string{"alert_id"},
		},
	}, handlers.MarkAlertRead)

	server.AddTool(mcp.Tool{
		Name:        "mark_all_alerts_read",
		Description: "Mark every alert as read.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.MarkAllAlertsRead)

	server.AddTool(mcp.Tool{
		Name:        "delete_alert",
		Description: "Delete one alert.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"alert_id": idProperty("Alert ID")},
			Required:   []string{"alert_id"},
		},
	}, handlers.DeleteAlert)

	server.AddTool(mcp.Tool{
		Name:        "find_similar_items",
		Description: "Rank other tracked items by semantic similarity to an item.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": idProperty("Item ID"),
				"min_similarity": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity between 0 and 1 (default: 0.75)",
				},
			},
			Required: []string{"item_id"},
		},
	}, handlers.FindSimilarItems)

	server.AddTool(mcp.Tool{
		Name:        "find_better_deals",
		Description: "Find similar tracked items that are at least 10% cheaper.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"item_id": idProperty("Item ID")},
			Required:   []string{"item_id"},
		},
	}, handlers.FindBetterDeals)

	server.AddTool(mcp.Tool{
		Name:        "find_alternatives",
		Description: "Raise similar_item alerts for better deals not alerted before.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"item_id": idProperty("Item ID")},
			Required:   []string{"item_id"},
		},
	}, handlers.FindAlternatives)

	return handlers
}
