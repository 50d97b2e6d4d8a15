package main

import (
	"context"

	"github.com/aretw0/racketbot/internal/cli"
	"github.com/spf13/cobra"
)

var serveOpts cli.ServeOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session API",
	Long:  `Exposes conversations as a JSON API described by /openapi.yaml, with SSE updates and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return app.Serve(sigCtx, serveOpts)
	},
}

var catalogAddr string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Start the bundled recommendation service",
	Long: `Serves POST /recommend from a racket catalogue (the embedded sample, or catalog.path).
Explanations are written by OpenAI when OPENAI_API_KEY is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return app.ServeCatalog(sigCtx, catalogAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveOpts.Addr, "addr", "a", "", "Listen address (default from http.addr)")
	serveCmd.Flags().BoolVar(&serveOpts.InProcess, "catalog", false, "Answer from the bundled catalogue instead of the HTTP endpoint")

	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringVarP(&catalogAddr, "addr", "a", "", "Listen address (default from catalog.addr)")
}
