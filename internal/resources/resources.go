// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (gantry://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler manages the hierarchy resource endpoints.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a resource Handler over the given engine.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// StatsResource returns the MCP resource definition for hierarchy-wide
// completion statistics.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		"gantry://hierarchy/stats",
		"Hierarchy Completion Statistics",
		mcp.WithResourceDescription("Item counts by type and status, plus overall completion totals"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStats returns the current completion statistics as JSON.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.engine.Progress.CompletionStatistics(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling statistics: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource carrying an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
