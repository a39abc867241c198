// Package cli implements the aura command line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/aura-code/aura/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"     _                 \n" +
		"    / \\  _   _ _ __ __ _\n" +
		"   / _ \\| | | | '__/ _` |\n" +
		"  / ___ \\ |_| | | | (_| |\n" +
		" /_/   \\_\\__,_|_|  \\__,_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "aura",
	Short: "Aura - local-first coding agent",
	Long:  color.CyanString(logo) + "\nA local-first AI coding assistant with delegating agents.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(guardiansCmd)
	rootCmd.AddCommand(historyCmd)
}
