package main

import (
	"fmt"
	"os"

	"github.com/aretw0/racketbot/internal/cli"
	"github.com/spf13/cobra"
)

var globalOpts cli.GlobalOptions

var rootCmd = &cobra.Command{
	Use:   "racketbot",
	Short: "racketbot recommends badminton rackets through a short chat",
	Long: `racketbot asks four questions (level, play style, frame stiffness, budget),
sends the answers to a recommendation service and shows the matching rackets.

Run it in the terminal, serve it over HTTP or MCP, or start the bundled catalogue service.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration for a command.
func setup() (*cli.App, error) {
	return cli.Setup(globalOpts)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.ConfigFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&globalOpts.EnvFile, "env-file", ".env", "dotenv file loaded before the environment (ignored when missing)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.Debug, "debug", false, "Enable debug logging on stderr")
}
