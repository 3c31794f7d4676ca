package main

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP and WebSocket API",
	Long: `Start the HTTP API, load filter bounds from the analytics engine and run
until SIGINT or SIGTERM. A failed bootstrap is logged; POST /api/reload retries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp()
		if err != nil {
			return err
		}
		return app.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
