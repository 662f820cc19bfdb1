package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the given targets, or all targets",
		Long: "Build the given targets in configuration order. With no arguments every\n" +
			"target is built, which is the same as running pack without a command.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), args, runOptions(cmd))
		},
	}
}
