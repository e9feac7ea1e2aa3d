package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/concord"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of concord",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "concord version %s\n", strings.TrimSpace(concord.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
