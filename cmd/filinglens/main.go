package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"FilingLens/internal/di"
	"FilingLens/pkg/config"
	"FilingLens/pkg/server"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "filinglens",
	Short: "Regulatory filing analytics dashboard service",
	Long: `filinglens keeps one dashboard session per process: filter state, the
coordinated chart queries against the analytics engine, point selection and
the what-if prediction workstation.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
}

// newApp loads config (YAML, then environment) and wires the application.
func newApp() (*server.App, *config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	app, err := di.InitializeApp(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize app: %w", err)
	}
	return app, cfg, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
