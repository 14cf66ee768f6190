// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlanPrompt handles the gantry-plan MCP prompt.
// It guides the AI to break a goal down into the four-level hierarchy.
type PlanPrompt struct{}

// NewPlanPrompt creates a PlanPrompt.
func NewPlanPrompt() *PlanPrompt {
	return &PlanPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("gantry-plan",
		mcp.WithPromptDescription(
			"Break a goal down into a Project → PRD → Task → Subtask "+
				"hierarchy and create the items in Gantry.",
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What you want to build or achieve"),
		),
	)
}

// Handle processes the gantry-plan prompt request.
func (p *PlanPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	goal := "my goal"
	if args := req.Params.Arguments; args != nil {
		if g, ok := args["goal"]; ok && g != "" {
			goal = g
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Plan: %s", goal),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to plan the following work in Gantry: %s\n\n"+
						"Please:\n"+
						"1. Ask me any questions needed to understand the scope\n"+
						"2. Propose a breakdown: one Project, its PRDs, their Tasks, and Subtasks where useful\n"+
						"3. Once I approve the breakdown, create the items with `item_create`, top-down\n"+
						"4. Add `dep_add` edges for any ordering constraints between same-level items\n"+
						"5. Finish by showing me the result with `hierarchy_tree`",
					goal,
				)),
			},
		},
	}, nil
}
