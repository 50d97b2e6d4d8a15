package main

import (
	"context"

	"github.com/aretw0/racketbot/internal/cli"
	"github.com/spf13/cobra"
)

var runOpts cli.RunOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Chat in the terminal",
	Long: `Starts the questionnaire in the terminal. With --session the conversation is
saved after every step and resumed on the next run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return app.Run(sigCtx, runOpts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOpts.SessionID, "session", "s", "", "Session ID to persist and resume")
	runCmd.Flags().BoolVar(&runOpts.Fresh, "fresh", false, "Discard the stored session before starting")
	runCmd.Flags().BoolVar(&runOpts.JSON, "json", false, "Read and write JSON lines")
	runCmd.Flags().BoolVar(&runOpts.InProcess, "catalog", false, "Answer from the bundled catalogue instead of the HTTP endpoint")
}
