package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// ItemDeleteTool handles the item_delete MCP tool.
type ItemDeleteTool struct {
	engine *engine.Engine
}

// NewItemDeleteTool creates an ItemDeleteTool over the given engine.
func NewItemDeleteTool(e *engine.Engine) *ItemDeleteTool {
	return &ItemDeleteTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ItemDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("item_delete",
		mcp.WithDescription(
			"Delete a work item. Without force, deletion is refused when other "+
				"items depend on it or when it still has children, and nothing is "+
				"touched. With force=true the whole subtree is removed along with "+
				"every dependency edge on its members; the response reports "+
				"exactly which ids and edges were deleted.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the item to delete."),
		),
		mcp.WithBoolean("force",
			mcp.Description("Delete the full subtree and its dependency edges (default false)."),
		),
	)
}

// Handle processes the item_delete tool call.
func (t *ItemDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	report, err := t.engine.DeleteItem(ctx, id, boolArg(req, "force"))
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(report), nil
}
