package cmd

import (
	"github.com/spf13/cobra"

	// Builtin advice store backends and metric sinks register on import.
	_ "github.com/smartcommute/smartcommute/app/plugins"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "smartcommute",
	Short: "Commute simulator and departure advisor",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
