package service

import (
	"context"

	"FilingLens/internal/domain/models"
)

// QueryEngine runs the dashboard's analytical queries remotely.
// Every query takes the filter as given; nil fields mean no constraint.
type QueryEngine interface {
	FilterBounds(ctx context.Context) (models.FilterBounds, error)
	Metrics(ctx context.Context, f models.FilterState) (models.Metrics, error)
	Histogram(ctx context.Context, f models.FilterState) ([]models.HistogramBin, error)
	Heatmap(ctx context.Context, f models.FilterState, dim models.SentimentDimension) (models.Heatmap, error)
	ScatterAndTrend(ctx context.Context, f models.FilterState) (models.Scatter, error)
}

// Predictor estimates excess return and finds similar filings for a feature vector.
type Predictor interface {
	Predict(ctx context.Context, in models.PredictionInput) (models.PredictionResult, error)
	FeatureImportance(ctx context.Context) ([]models.FeatureImportance, error)
}

// AnalyticsEngine is the full remote contract.
type AnalyticsEngine interface {
	QueryEngine
	Predictor
}
