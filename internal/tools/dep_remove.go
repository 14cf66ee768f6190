package tools

import (
	"context"
	"fmt"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// DepRemoveTool handles the dep_remove MCP tool.
type DepRemoveTool struct {
	engine *engine.Engine
}

// NewDepRemoveTool creates a DepRemoveTool over the given engine.
func NewDepRemoveTool(e *engine.Engine) *DepRemoveTool {
	return &DepRemoveTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *DepRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("dep_remove",
		mcp.WithDescription(
			"Remove the depends-on edge from from_id to to_id. Removing an "+
				"edge that does not exist is an error.",
		),
		mcp.WithString("from_id",
			mcp.Required(),
			mcp.Description("ID of the depending item."),
		),
		mcp.WithString("to_id",
			mcp.Required(),
			mcp.Description("ID of the depended-on item."),
		),
	)
}

// Handle processes the dep_remove tool call.
func (t *DepRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fromID, errRes := requireString(req, "from_id")
	if errRes != nil {
		return errRes, nil
	}
	toID, errRes := requireString(req, "to_id")
	if errRes != nil {
		return errRes, nil
	}

	if err := t.engine.Graph.RemoveDependency(ctx, fromID, toID); err != nil {
		return engineError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed dependency %s -> %s", fromID, toID)), nil
}
