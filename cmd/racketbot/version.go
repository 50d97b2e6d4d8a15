package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/racketbot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of racketbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "racketbot version %s\n", strings.TrimSpace(racketbot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
