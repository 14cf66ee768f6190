// Version command for the gantry CLI.
package main

import (
	"fmt"

	gantryserver "github.com/gantry-mcp/gantry/internal/server"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gantry version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gantry", gantryserver.Version)
	},
}
