package main

import (
	"github.com/spf13/cobra"
)

var graphSession string

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the questionnaire as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the configured script. With --session the stored session's position is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}
		return app.Graph(cmd.Context(), graphSession)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVarP(&graphSession, "session", "s", "", "Highlight this stored session")
}
