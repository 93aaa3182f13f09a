package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SurakshaKumari/gt-3D-backend/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "scenesync", version.String())
		},
	}
}
