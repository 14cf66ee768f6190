package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StandupPrompt handles the gantry-standup MCP prompt.
// It guides the AI to produce a status review of the tracked work.
type StandupPrompt struct{}

// NewStandupPrompt creates a StandupPrompt.
func NewStandupPrompt() *StandupPrompt {
	return &StandupPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StandupPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("gantry-standup",
		mcp.WithPromptDescription(
			"Review the current state of tracked work: what is in progress, "+
				"what is blocked, and how far along each project is.",
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Optionally limit the review to one project"),
		),
	)
}

// Handle processes the gantry-standup prompt request.
func (p *StandupPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	scopeNote := "across every project"
	scopeArg := ""
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["project_id"]; ok && id != "" {
			scopeNote = "for project " + id
			scopeArg = " with scope_id=" + id
		}
	}

	return &mcp.GetPromptResult{
		Description: "Status review " + scopeNote,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Give me a standup-style status review " + scopeNote + ".\n\n" +
						"Please:\n" +
						"1. Call `item_list` with status='In Progress'" + scopeArg + " for active work\n" +
						"2. Call `progress_report` for completion figures\n" +
						"3. Call `hierarchy_validate` and mention any structural problems or orphans\n" +
						"4. Summarize: what is moving, what is done, and what needs attention",
				),
			},
		},
	}, nil
}
