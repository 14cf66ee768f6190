package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// ItemSearchTool handles the item_search MCP tool.
type ItemSearchTool struct {
	engine *engine.Engine
}

// NewItemSearchTool creates an ItemSearchTool over the given engine.
func NewItemSearchTool(e *engine.Engine) *ItemSearchTool {
	return &ItemSearchTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ItemSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("item_search",
		mcp.WithDescription(
			"Search work items by title, case-insensitive substring match. "+
				"scope_id restricts the search to the subtree rooted there.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to look for in item titles."),
		),
		mcp.WithString("scope_id",
			mcp.Description("Restrict the search to the subtree rooted at this id."),
		),
	)
}

// Handle processes the item_search tool call.
func (t *ItemSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, errRes := requireString(req, "text")
	if errRes != nil {
		return errRes, nil
	}

	items, err := t.engine.Query.SearchByTitle(ctx, text, req.GetString("scope_id", ""))
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(items), nil
}
