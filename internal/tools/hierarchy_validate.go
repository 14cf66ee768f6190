package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/mark3labs/mcp-go/mcp"
)

// HierarchyValidateTool handles the hierarchy_validate MCP tool.
type HierarchyValidateTool struct {
	engine *engine.Engine
}

// NewHierarchyValidateTool creates a HierarchyValidateTool over the
// given engine.
func NewHierarchyValidateTool(e *engine.Engine) *HierarchyValidateTool {
	return &HierarchyValidateTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *HierarchyValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("hierarchy_validate",
		mcp.WithDescription(
			"Scan the whole hierarchy for structural inconsistencies: type-order "+
				"violations, dangling or duplicate parentage, children-list "+
				"mismatches and orphaned items. The scan reports every violation "+
				"it finds; it never stops at the first one.",
		),
	)
}

// validateResponse is the full consistency report: rule violations plus
// the orphan list.
type validateResponse struct {
	OK         bool               `json:"ok"`
	Violations []engine.Violation `json:"violations"`
	Orphans    []*item.WorkItem   `json:"orphans"`
}

// Handle processes the hierarchy_validate tool call.
func (t *HierarchyValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, orphans, err := t.engine.ValidateHierarchy(ctx)
	if err != nil {
		return engineError(err), nil
	}
	if orphans == nil {
		orphans = []*item.WorkItem{}
	}
	return jsonResult(validateResponse{
		OK:         res.OK,
		Violations: res.Violations,
		Orphans:    orphans,
	}), nil
}
