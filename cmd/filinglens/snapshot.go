package main

import (
	"context"
	"fmt"
	"time"

	"FilingLens/internal/domain/models"

	"github.com/spf13/cobra"
)

var (
	snapshotTimeout   time.Duration
	snapshotSentiment string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Load the dashboard once and print it as JSON",
	Long: `Bootstrap a session against the analytics engine, let the first full query
run over the default date range and print the resulting dashboard.

Examples:
  filinglens snapshot
  filinglens snapshot --sentiment Positive --timeout 2m`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", time.Minute, "overall deadline")
	snapshotCmd.Flags().StringVar(&snapshotSentiment, "sentiment", string(models.SentimentNegative), "heatmap sentiment dimension")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	app, _, err := newApp()
	if err != nil {
		return err
	}
	defer app.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
	defer cancel()

	dash := app.Dashboard()
	if err := dash.SetSentiment(models.SentimentDimension(snapshotSentiment)); err != nil {
		return err
	}
	if err := dash.Start(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	done := make(chan struct{})
	go func() {
		dash.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for queries: %w", ctx.Err())
	}

	return writeJSON(cmd.OutOrStdout(), dash.Snapshot())
}
