package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProgressSyncTool handles the progress_sync MCP tool.
type ProgressSyncTool struct {
	engine *engine.Engine
}

// NewProgressSyncTool creates a ProgressSyncTool over the given engine.
func NewProgressSyncTool(e *engine.Engine) *ProgressSyncTool {
	return &ProgressSyncTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ProgressSyncTool) Definition() mcp.Tool {
	return mcp.NewTool("progress_sync",
		mcp.WithDescription(
			"Recompute progress for every node in the subtree rooted at the "+
				"given item and return the nested report. Figures are derived "+
				"from current statuses; the pass never writes a status itself.",
		),
		mcp.WithString("root_id",
			mcp.Required(),
			mcp.Description("ID of the subtree root to synchronize."),
		),
	)
}

// Handle processes the progress_sync tool call.
func (t *ProgressSyncTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rootID, errRes := requireString(req, "root_id")
	if errRes != nil {
		return errRes, nil
	}

	report, err := t.engine.Progress.SynchronizeHierarchy(ctx, rootID)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(report), nil
}
