// Serve command: runs the MCP server over stdio.
package main

import (
	"fmt"
	"log"
	"os"

	gantryserver "github.com/gantry-mcp/gantry/internal/server"
	"github.com/gantry-mcp/gantry/internal/updater"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		s, cleanup, err := gantryserver.New(cfg)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		// Stdout belongs to the MCP transport; all diagnostics go to
		// stderr.
		log.SetOutput(cmd.ErrOrStderr())
		log.Printf("gantry %s serving on stdio (data dir %s)", gantryserver.Version, cfg.DataDir)

		// Background version check; prints to stderr so it never
		// interferes with the MCP transport on stdout.
		go checkForUpdates()

		// ServeStdio installs its own signal handling and returns when
		// stdin closes or the process is interrupted.
		return server.ServeStdio(s)
	},
}

// checkForUpdates runs a best-effort release check and prints a notice
// to stderr when a newer version exists. Network failures stay silent.
func checkForUpdates() {
	result := updater.CheckVersion(gantryserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}
