package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/mark3labs/mcp-go/mcp"
)

// ItemListTool handles the item_list MCP tool.
type ItemListTool struct {
	engine *engine.Engine
}

// NewItemListTool creates an ItemListTool over the given engine.
func NewItemListTool(e *engine.Engine) *ItemListTool {
	return &ItemListTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ItemListTool) Definition() mcp.Tool {
	return mcp.NewTool("item_list",
		mcp.WithDescription(
			"List work items matching the given filters. All filters are "+
				"optional and combine with AND; no filters lists everything. "+
				"scope_id restricts results to the subtree rooted there.",
		),
		mcp.WithString("status",
			mcp.Description("Filter by status: Backlog, This Sprint, Up Next, In Progress, Done."),
			mcp.Enum("Backlog", "This Sprint", "Up Next", "In Progress", "Done"),
		),
		mcp.WithString("type",
			mcp.Description("Filter by type: Project, PRD, Task or Subtask."),
			mcp.Enum("Project", "PRD", "Task", "Subtask"),
		),
		mcp.WithString("priority",
			mcp.Description("Filter by priority label (case-insensitive)."),
		),
		mcp.WithString("scope_id",
			mcp.Description("Restrict results to the subtree rooted at this id."),
		),
		mcp.WithString("created_after",
			mcp.Description("Only items created at or after this RFC 3339 timestamp."),
		),
		mcp.WithString("created_before",
			mcp.Description("Only items created at or before this RFC 3339 timestamp."),
		),
		mcp.WithString("sort",
			mcp.Description("Sort key: created (default), updated, title or priority."),
			mcp.Enum("created", "updated", "title", "priority"),
		),
	)
}

// Handle processes the item_list tool call.
func (t *ItemListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	if status != "" {
		if _, err := item.ParseStatus(status); err != nil {
			return engineError(err), nil
		}
	}
	typ := req.GetString("type", "")
	if typ != "" {
		if err := item.ValidateType(item.ItemType(typ)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	query := engine.Query{
		Status:        item.Status(status),
		Type:          item.ItemType(typ),
		Priority:      req.GetString("priority", ""),
		ScopeID:       req.GetString("scope_id", ""),
		CreatedAfter:  req.GetString("created_after", ""),
		CreatedBefore: req.GetString("created_before", ""),
		Sort:          engine.SortKey(req.GetString("sort", "")),
	}

	items, err := t.engine.Query.ItemsWhere(ctx, query)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(items), nil
}
