package tools

import (
	"context"
	"fmt"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProgressReportTool handles the progress_report MCP tool.
type ProgressReportTool struct {
	engine *engine.Engine
}

// NewProgressReportTool creates a ProgressReportTool over the given
// engine.
func NewProgressReportTool(e *engine.Engine) *ProgressReportTool {
	return &ProgressReportTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ProgressReportTool) Definition() mcp.Tool {
	return mcp.NewTool("progress_report",
		mcp.WithDescription(
			"Report completion progress. With an id, returns the completion "+
				"ratio of that Project, PRD or Task over its direct children; "+
				"an item with no children reports 0%, never 100%. Without an id, "+
				"returns completion statistics for the whole hierarchy, broken "+
				"down by type and status.",
		),
		mcp.WithString("id",
			mcp.Description("ID of a Project, PRD or Task. Omit for hierarchy-wide statistics."),
		),
	)
}

// Handle processes the progress_report tool call.
func (t *ProgressReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		stats, err := t.engine.Progress.CompletionStatistics(ctx)
		if err != nil {
			return engineError(err), nil
		}
		return jsonResult(stats), nil
	}

	node, err := t.engine.GetItem(ctx, id)
	if err != nil {
		return engineError(err), nil
	}

	var prog engine.Progress
	switch node.Type {
	case item.TypeProject:
		prog, err = t.engine.Progress.ProjectProgress(ctx, id)
	case item.TypePRD:
		prog, err = t.engine.Progress.PRDProgress(ctx, id)
	case item.TypeTask:
		prog, err = t.engine.Progress.TaskProgress(ctx, id)
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"progress is computed over children; a %s has none; ask for its parent Task instead", node.Type,
		)), nil
	}
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(prog), nil
}
