package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// DepAddTool handles the dep_add MCP tool.
type DepAddTool struct {
	engine *engine.Engine
}

// NewDepAddTool creates a DepAddTool over the given engine.
func NewDepAddTool(e *engine.Engine) *DepAddTool {
	return &DepAddTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *DepAddTool) Definition() mcp.Tool {
	return mcp.NewTool("dep_add",
		mcp.WithDescription(
			"Add a depends-on edge: from_id depends on to_id. The edge is "+
				"checked for cycles before it is committed; an edge that would "+
				"close a cycle is rejected with the full cycle path and nothing "+
				"is written. By default both endpoints must be the same item "+
				"type; self-dependencies are always rejected.",
		),
		mcp.WithString("from_id",
			mcp.Required(),
			mcp.Description("ID of the item that depends on the other."),
		),
		mcp.WithString("to_id",
			mcp.Required(),
			mcp.Description("ID of the item being depended on."),
		),
	)
}

// Handle processes the dep_add tool call.
func (t *DepAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fromID, errRes := requireString(req, "from_id")
	if errRes != nil {
		return errRes, nil
	}
	toID, errRes := requireString(req, "to_id")
	if errRes != nil {
		return errRes, nil
	}

	edge, err := t.engine.Graph.AddDependency(ctx, fromID, toID)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(edge), nil
}
