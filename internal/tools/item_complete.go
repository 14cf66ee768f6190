package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/mark3labs/mcp-go/mcp"
)

// ItemCompleteTool handles the item_complete MCP tool.
type ItemCompleteTool struct {
	engine *engine.Engine
}

// NewItemCompleteTool creates an ItemCompleteTool over the given engine.
func NewItemCompleteTool(e *engine.Engine) *ItemCompleteTool {
	return &ItemCompleteTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ItemCompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("item_complete",
		mcp.WithDescription(
			"Mark a work item Done and run the upward completion cascade: "+
				"when every sibling is Done too, the parent completes, and so on "+
				"up the chain. Completing an already-Done item is a no-op. "+
				"The response lists every ancestor the cascade completed.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the item to complete."),
		),
	)
}

type completeResponse struct {
	Item    *item.WorkItem       `json:"item"`
	Cascade engine.CascadeResult `json:"cascade"`
}

// Handle processes the item_complete tool call.
func (t *ItemCompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	done, cascade, err := t.engine.CompleteItem(ctx, id)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(completeResponse{Item: done, Cascade: cascade}), nil
}
