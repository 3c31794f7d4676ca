package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FilingLens/internal/domain/models"

	"github.com/spf13/cobra"
)

var (
	predictSet        []string
	predictTimeout    time.Duration
	predictImportance bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run one what-if excess-return prediction",
	Long: `Start from the default feature vector, apply --set overrides and ask the
engine for a prediction plus the most similar filings.

Examples:
  filinglens predict
  filinglens predict --set CCTI=-2.5 --set Vol_30d=0.08
  filinglens predict --importance`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().StringArrayVar(&predictSet, "set", nil, "feature override as NAME=VALUE (repeatable)")
	predictCmd.Flags().DurationVar(&predictTimeout, "timeout", 30*time.Second, "request deadline")
	predictCmd.Flags().BoolVar(&predictImportance, "importance", false, "also print model feature importance")
}

// parseFeature splits NAME=VALUE.
func parseFeature(s string) (models.FeatureField, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("want NAME=VALUE, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", name, err)
	}
	return models.FeatureField(strings.TrimSpace(name)), v, nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	app, _, err := newApp()
	if err != nil {
		return err
	}
	defer app.Shutdown(context.Background())

	ws := app.Dashboard().Prediction()
	for _, s := range predictSet {
		f, v, err := parseFeature(s)
		if err != nil {
			return err
		}
		if _, err := ws.SetFeature(f, v); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), predictTimeout)
	defer cancel()

	res, err := ws.Run(ctx)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	out := struct {
		Input      models.PredictionInput     `json:"input"`
		Result     models.PredictionResult    `json:"result"`
		Importance []models.FeatureImportance `json:"importance,omitempty"`
	}{Input: ws.Draft(), Result: res}

	if predictImportance {
		if out.Importance, err = ws.FeatureImportance(ctx); err != nil {
			return fmt.Errorf("feature importance: %w", err)
		}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
