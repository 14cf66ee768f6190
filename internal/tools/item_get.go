package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// ItemGetTool handles the item_get MCP tool.
type ItemGetTool struct {
	engine *engine.Engine
}

// NewItemGetTool creates an ItemGetTool over the given engine.
func NewItemGetTool(e *engine.Engine) *ItemGetTool {
	return &ItemGetTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ItemGetTool) Definition() mcp.Tool {
	return mcp.NewTool("item_get",
		mcp.WithDescription(
			"Fetch a single work item by id, including its ordered children ids.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the item to fetch."),
		),
	)
}

// Handle processes the item_get tool call.
func (t *ItemGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	w, err := t.engine.GetItem(ctx, id)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(w), nil
}
