package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/mark3labs/mcp-go/mcp"
)

// DepImpactTool handles the dep_impact MCP tool.
type DepImpactTool struct {
	engine *engine.Engine
}

// NewDepImpactTool creates a DepImpactTool over the given engine.
func NewDepImpactTool(e *engine.Engine) *DepImpactTool {
	return &DepImpactTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *DepImpactTool) Definition() mcp.Tool {
	return mcp.NewTool("dep_impact",
		mcp.WithDescription(
			"Report what deleting an item would break: the items that depend "+
				"on it. An item with dependents cannot be deleted without "+
				"force=true on item_delete.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the item to assess."),
		),
	)
}

// impactResponse lists the inbound edges and whether plain deletion
// would be refused.
type impactResponse struct {
	ID           string                `json:"id"`
	Dependents   []item.DependencyEdge `json:"dependents"`
	SafeToDelete bool                  `json:"safe_to_delete"`
}

// Handle processes the dep_impact tool call.
func (t *DepImpactTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	node, err := t.engine.GetItem(ctx, id)
	if err != nil {
		return engineError(err), nil
	}

	deps, err := t.engine.Graph.Dependents(ctx, id)
	if err != nil {
		return engineError(err), nil
	}
	if deps == nil {
		deps = []item.DependencyEdge{}
	}

	return jsonResult(impactResponse{
		ID:           id,
		Dependents:   deps,
		SafeToDelete: len(deps) == 0 && len(node.ChildrenIDs) == 0,
	}), nil
}
