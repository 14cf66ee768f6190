package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ItemCreateTool handles the item_create MCP tool.
type ItemCreateTool struct {
	engine *engine.Engine
}

// NewItemCreateTool creates an ItemCreateTool over the given engine.
func NewItemCreateTool(e *engine.Engine) *ItemCreateTool {
	return &ItemCreateTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ItemCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("item_create",
		mcp.WithDescription(
			"Create a work item in the hierarchy. "+
				"Projects take no parent; a PRD's parent must be a Project, "+
				"a Task's parent a PRD, a Subtask's parent a Task. "+
				"Creation is refused when the parent is missing or one level does not follow the next.",
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Item type: Project, PRD, Task or Subtask."),
			mcp.Enum("Project", "PRD", "Task", "Subtask"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title for the item."),
		),
		mcp.WithString("parent_id",
			mcp.Description("ID of the parent item. Omit for Projects, required otherwise."),
		),
		mcp.WithString("description",
			mcp.Description("Longer free-form description."),
		),
		mcp.WithString("priority",
			mcp.Description("Priority label: High, Medium or Low."),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (default Backlog): Backlog, This Sprint, Up Next, In Progress, Done."),
			mcp.DefaultString(string(item.StatusBacklog)),
		),
	)
}

// Handle processes the item_create tool call.
func (t *ItemCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, errRes := requireString(req, "type")
	if errRes != nil {
		return errRes, nil
	}
	title, errRes := requireString(req, "title")
	if errRes != nil {
		return errRes, nil
	}

	status := req.GetString("status", string(item.StatusBacklog))
	if _, err := item.ParseStatus(status); err != nil {
		return engineError(err), nil
	}

	fields := store.CreateFields{
		Title:       title,
		Description: req.GetString("description", ""),
		Priority:    req.GetString("priority", ""),
		Status:      item.Status(status),
	}

	created, err := t.engine.CreateItem(ctx, req.GetString("parent_id", ""), item.ItemType(typ), fields)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(created), nil
}
