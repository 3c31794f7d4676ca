package engine

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/domain/service"
	xhttp "FilingLens/pkg/http"
	"FilingLens/pkg/logger"
)

// Engine operation labels used in logs and metrics.
const (
	OpFilterBounds      = "filter_bounds"
	OpMetrics           = "metrics"
	OpHistogram         = "histogram"
	OpHeatmap           = "heatmap"
	OpScatter           = "scatter"
	OpPredict           = "predict"
	OpFeatureImportance = "feature_importance"
)

var _ service.AnalyticsEngine = (*HTTPClient)(nil)

// QueryOptions are per-deployment query parameters the engine accepts.
type QueryOptions struct {
	HistogramBins int
	VolCutoff     float64
}

// HTTPClient talks to the analytics engine's JSON API.
type HTTPClient struct {
	base *httpBase
	opts QueryOptions
}

// NewHTTPClient validates baseURL and applies opts.
func NewHTTPClient(baseURL string, timeout time.Duration, q QueryOptions, l *logger.Logger, opts ...BaseOption) (*HTTPClient, error) {
	base, err := newHTTPBase(baseURL, timeout, l.Component("engine"), opts...)
	if err != nil {
		return nil, err
	}
	if q.HistogramBins <= 0 {
		q.HistogramBins = 50
	}
	if q.VolCutoff <= 0 {
		q.VolCutoff = 100
	}
	return &HTTPClient{base: base, opts: q}, nil
}

func (c *HTTPClient) FilterBounds(ctx context.Context) (models.FilterBounds, error) {
	var resp boundsResponse
	if err := c.base.call(ctx, OpFilterBounds, xhttp.MethodGet, "/api/init_filters", nil, nil, &resp); err != nil {
		return models.FilterBounds{}, err
	}
	return resp.toModel(), nil
}

func (c *HTTPClient) Metrics(ctx context.Context, f models.FilterState) (models.Metrics, error) {
	var resp metricsResponse
	if err := c.base.call(ctx, OpMetrics, xhttp.MethodPost, "/api/metrics", nil, toFilterRequest(f), &resp); err != nil {
		return models.Metrics{}, err
	}
	return resp.toModel(), nil
}

func (c *HTTPClient) Histogram(ctx context.Context, f models.FilterState) ([]models.HistogramBin, error) {
	q := url.Values{"bins": {strconv.Itoa(c.opts.HistogramBins)}}
	var resp []histogramBin
	if err := c.base.call(ctx, OpHistogram, xhttp.MethodPost, "/api/charts/ccti_distribution", q, toFilterRequest(f), &resp); err != nil {
		return nil, err
	}
	out := make([]models.HistogramBin, len(resp))
	for i, b := range resp {
		out[i] = models.HistogramBin{Bin: b.Bin, Count: b.Count}
	}
	return out, nil
}

func (c *HTTPClient) Heatmap(ctx context.Context, f models.FilterState, dim models.SentimentDimension) (models.Heatmap, error) {
	q := url.Values{"sentiment_col": {string(dim)}}
	var resp heatmapResponse
	if err := c.base.call(ctx, OpHeatmap, xhttp.MethodPost, "/api/charts/heatmap", q, toFilterRequest(f), &resp); err != nil {
		return models.Heatmap{}, err
	}
	return resp.toModel()
}

func (c *HTTPClient) ScatterAndTrend(ctx context.Context, f models.FilterState) (models.Scatter, error) {
	q := url.Values{"vol_cutoff": {strconv.FormatFloat(c.opts.VolCutoff, 'f', -1, 64)}}
	var resp scatterResponse
	if err := c.base.call(ctx, OpScatter, xhttp.MethodPost, "/api/charts/scatter", q, toFilterRequest(f), &resp); err != nil {
		return models.Scatter{}, err
	}
	return resp.toModel(), nil
}

func (c *HTTPClient) Predict(ctx context.Context, in models.PredictionInput) (models.PredictionResult, error) {
	var resp predictResponse
	if err := c.base.call(ctx, OpPredict, xhttp.MethodPost, "/api/predict", nil, in, &resp); err != nil {
		return models.PredictionResult{}, err
	}
	return resp.toModel(), nil
}

func (c *HTTPClient) FeatureImportance(ctx context.Context) ([]models.FeatureImportance, error) {
	var resp []importanceEntry
	if err := c.base.call(ctx, OpFeatureImportance, xhttp.MethodGet, "/api/feature_importance", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.FeatureImportance, len(resp))
	for i, e := range resp {
		out[i] = models.FeatureImportance{Feature: e.Feature, Importance: float64(e.Importance)}
	}
	return out, nil
}
