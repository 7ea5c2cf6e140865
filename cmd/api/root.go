package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd wires the cohorthub subcommands. Configuration comes from the
// environment (and an optional .env file), not flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cohorthub",
		Short:         "cohorthub - bootcamp roster API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
