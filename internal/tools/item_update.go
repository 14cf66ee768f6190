package tools

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/mark3labs/mcp-go/mcp"
)

// ItemUpdateTool handles the item_update MCP tool.
type ItemUpdateTool struct {
	engine *engine.Engine
}

// NewItemUpdateTool creates an ItemUpdateTool over the given engine.
func NewItemUpdateTool(e *engine.Engine) *ItemUpdateTool {
	return &ItemUpdateTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ItemUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("item_update",
		mcp.WithDescription(
			"Partially update a work item. Only the supplied fields change. "+
				"Setting status to Done triggers the upward completion cascade; "+
				"the response reports every ancestor the cascade completed. "+
				"Backward status moves are allowed, but never reopen ancestors "+
				"the cascade already completed.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the item to update."),
		),
		mcp.WithString("title",
			mcp.Description("New title."),
		),
		mcp.WithString("description",
			mcp.Description("New description."),
		),
		mcp.WithString("priority",
			mcp.Description("New priority label: High, Medium or Low."),
		),
		mcp.WithString("status",
			mcp.Description("New status: Backlog, This Sprint, Up Next, In Progress, Done."),
			mcp.Enum("Backlog", "This Sprint", "Up Next", "In Progress", "Done"),
		),
	)
}

// updateResponse pairs the updated item with the cascade outcome so
// callers see both the direct write and its ripple.
type updateResponse struct {
	Item    *item.WorkItem       `json:"item"`
	Cascade engine.CascadeResult `json:"cascade"`
}

// Handle processes the item_update tool call.
func (t *ItemUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	fields := item.Fields{}
	args := req.GetArguments()
	if _, ok := args["title"]; ok {
		v := req.GetString("title", "")
		fields.Title = &v
	}
	if _, ok := args["description"]; ok {
		v := req.GetString("description", "")
		fields.Description = &v
	}
	if _, ok := args["priority"]; ok {
		v := req.GetString("priority", "")
		fields.Priority = &v
	}
	if _, ok := args["status"]; ok {
		s, err := item.ParseStatus(req.GetString("status", ""))
		if err != nil {
			return engineError(err), nil
		}
		fields.Status = &s
	}

	updated, cascade, err := t.engine.UpdateItem(ctx, id, fields)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(updateResponse{Item: updated, Cascade: cascade}), nil
}
