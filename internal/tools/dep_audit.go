package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// DepAuditTool handles the dep_audit MCP tool.
type DepAuditTool struct {
	engine *engine.Engine
}

// NewDepAuditTool creates a DepAuditTool over the given engine.
func NewDepAuditTool(e *engine.Engine) *DepAuditTool {
	return &DepAuditTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *DepAuditTool) Definition() mcp.Tool {
	return mcp.NewTool("dep_audit",
		mcp.WithDescription(
			"Audit the dependency graph. Without arguments, scans the full "+
				"edge set for cycles (a diagnostic; every committed edge was "+
				"already cycle-checked). With node_id, additionally walks the "+
				"transitive depends-on chain outward from that node.",
		),
		mcp.WithString("node_id",
			mcp.Description("Optionally list the transitive dependency chain from this item."),
		),
	)
}

// auditResponse reports the cycle scan plus an optional chain walk.
type auditResponse struct {
	Acyclic bool          `json:"acyclic"`
	Cycle   *engine.Cycle `json:"cycle,omitempty"`
	Chain   []string      `json:"chain,omitempty"`
}

// Handle processes the dep_audit tool call.
func (t *DepAuditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cycle, err := t.engine.Graph.CheckCycles(ctx)
	if err != nil {
		return engineError(err), nil
	}

	resp := auditResponse{Acyclic: cycle == nil, Cycle: cycle}

	if nodeID := req.GetString("node_id", ""); nodeID != "" {
		if _, err := t.engine.GetItem(ctx, nodeID); err != nil {
			return engineError(err), nil
		}
		chain, err := t.engine.Graph.DependencyChain(ctx, nodeID)
		if err != nil {
			return engineError(err), nil
		}
		resp.Chain = chain
	}

	return jsonResult(resp), nil
}
