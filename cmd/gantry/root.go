// Root command for the gantry CLI.
package main

import (
	"github.com/gantry-mcp/gantry/internal/config"
	"github.com/spf13/cobra"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "Gantry is a hierarchical work-item tracker MCP server",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "",
		"configuration directory (default: ~/.gantry)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "",
		"data directory holding gantry.db (default: the config directory)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config directory and loads configuration,
// applying the --data-dir override last so the flag wins over both the
// file and the environment.
func loadConfig() (config.Config, error) {
	dir := flagConfigDir
	if dir == "" {
		dir = config.DefaultDir()
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return config.Config{}, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return cfg, nil
}
