// Package tools implements the MCP tool handlers over the hierarchy
// engine.
//
// Each tool is a struct that receives the engine via its constructor
// and returns a handler compatible with mcp-go's CallToolRequest
// signature. One file = one tool.
package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/mark3labs/mcp-go/mcp"
)

// engineError renders an engine error as a tool error the caller can
// act on: kind, message, affected node ids and the remediation hint.
// Unknown error shapes fall back to the bare message.
func engineError(err error) *mcp.CallToolResult {
	e, ok := item.AsError(err)
	if !ok {
		return mcp.NewToolResultError(err.Error())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)
	if len(e.NodeIDs) > 0 {
		fmt.Fprintf(&b, " (nodes: %s)", strings.Join(e.NodeIDs, ", "))
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "\nHint: %s", e.Hint)
	}
	return mcp.NewToolResultError(b.String())
}

// jsonResult marshals v as indented JSON. Marshal failures become tool
// errors rather than protocol errors.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// boolArg reads an optional boolean argument, tolerating the JSON
// encodings clients actually send (bool, or the strings "true"/"false").
func boolArg(req mcp.CallToolRequest, key string) bool {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return false
	}
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// requireString reads a required string argument, returning a tool
// error when it is missing or blank.
func requireString(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	val := strings.TrimSpace(req.GetString(key, ""))
	if val == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	return val, nil
}
