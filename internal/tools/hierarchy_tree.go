package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// HierarchyTreeTool handles the hierarchy_tree MCP tool.
type HierarchyTreeTool struct {
	engine *engine.Engine
}

// NewHierarchyTreeTool creates a HierarchyTreeTool over the given engine.
func NewHierarchyTreeTool(e *engine.Engine) *HierarchyTreeTool {
	return &HierarchyTreeTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *HierarchyTreeTool) Definition() mcp.Tool {
	return mcp.NewTool("hierarchy_tree",
		mcp.WithDescription(
			"Render the subtree rooted at the given item as a nested tree. "+
				"Children appear in insertion order; empty intermediate levels "+
				"yield empty child lists rather than errors.",
		),
		mcp.WithString("root_id",
			mcp.Required(),
			mcp.Description("ID of the subtree root (typically a Project)."),
		),
	)
}

// Handle processes the hierarchy_tree tool call.
func (t *HierarchyTreeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rootID, errRes := requireString(req, "root_id")
	if errRes != nil {
		return errRes, nil
	}

	tree, err := t.engine.Query.HierarchyTree(ctx, rootID)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(tree), nil
}
