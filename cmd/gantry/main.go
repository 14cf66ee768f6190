// Gantry: hierarchical work-item tracker MCP server.
//
// A four-level Project → PRD → Task → Subtask hierarchy with an upward
// completion cascade, progress rollups and an acyclic dependency graph,
// exposed to AI coding tools over MCP stdio.
//
// Usage:
//
//	gantry serve      # Start MCP server (stdio transport)
//	gantry version    # Print the version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
