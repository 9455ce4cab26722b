package cli

import (
	"github.com/spf13/cobra"

	"github.com/planwright/planwright/internal/infrastructure/wiring"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "planwright",
	Version: Version,
	Short:   "Desktop companion for AI-assisted architectural layouts",
	Long: `Planwright is the desktop companion pairing a CAD plugin with an AI
layout backend. Every generated layout waits in a review queue for an
explicit human disposition before the plugin may commit it to the model.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	wiring.Version = Version
	return RootCmd.Execute()
}
