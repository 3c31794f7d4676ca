package engine

import (
	"context"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/domain/repository"
	"FilingLens/internal/domain/service"
	"FilingLens/pkg/cache"
	"FilingLens/pkg/logger"
)

var _ service.AnalyticsEngine = (*CachedEngine)(nil)

// CachedEngine serves repeated read-only queries from a cache.
// Predict always goes to the engine.
type CachedEngine struct {
	next      service.AnalyticsEngine
	cache     cache.Service
	ttl       time.Duration
	boundsTTL time.Duration
	metrics   repository.Metrics
	log       *logger.Logger
}

func NewCachedEngine(next service.AnalyticsEngine, c cache.Service, ttl, boundsTTL time.Duration, m repository.Metrics, l *logger.Logger) *CachedEngine {
	return &CachedEngine{
		next:      next,
		cache:     c,
		ttl:       ttl,
		boundsTTL: boundsTTL,
		metrics:   m,
		log:       l.Component("engine-cache"),
	}
}

// cached runs load through the cache under key. Key errors skip the cache.
func cached[T any](ctx context.Context, e *CachedEngine, op string, ttl time.Duration, req interface{}, load func(context.Context) (T, error)) (T, error) {
	key, err := cache.RequestKey(op, req)
	if err != nil {
		e.log.Warn("cache key failed", logger.String("op", op), logger.Error(err))
		return load(ctx)
	}
	v, hit, err := cache.GetOrLoad(ctx, e.cache, key, ttl, load)
	if err == nil && e.metrics != nil {
		e.metrics.RecordCacheLookup(op, hit)
	}
	return v, err
}

type heatmapKey struct {
	Filter    filterRequest             `json:"filter"`
	Dimension models.SentimentDimension `json:"dimension"`
}

func (e *CachedEngine) FilterBounds(ctx context.Context) (models.FilterBounds, error) {
	return cached(ctx, e, OpFilterBounds, e.boundsTTL, struct{}{}, e.next.FilterBounds)
}

func (e *CachedEngine) Metrics(ctx context.Context, f models.FilterState) (models.Metrics, error) {
	return cached(ctx, e, OpMetrics, e.ttl, toFilterRequest(f), func(ctx context.Context) (models.Metrics, error) {
		return e.next.Metrics(ctx, f)
	})
}

func (e *CachedEngine) Histogram(ctx context.Context, f models.FilterState) ([]models.HistogramBin, error) {
	return cached(ctx, e, OpHistogram, e.ttl, toFilterRequest(f), func(ctx context.Context) ([]models.HistogramBin, error) {
		return e.next.Histogram(ctx, f)
	})
}

func (e *CachedEngine) Heatmap(ctx context.Context, f models.FilterState, dim models.SentimentDimension) (models.Heatmap, error) {
	key := heatmapKey{Filter: toFilterRequest(f), Dimension: dim}
	return cached(ctx, e, OpHeatmap, e.ttl, key, func(ctx context.Context) (models.Heatmap, error) {
		return e.next.Heatmap(ctx, f, dim)
	})
}

func (e *CachedEngine) ScatterAndTrend(ctx context.Context, f models.FilterState) (models.Scatter, error) {
	return cached(ctx, e, OpScatter, e.ttl, toFilterRequest(f), func(ctx context.Context) (models.Scatter, error) {
		return e.next.ScatterAndTrend(ctx, f)
	})
}

func (e *CachedEngine) Predict(ctx context.Context, in models.PredictionInput) (models.PredictionResult, error) {
	return e.next.Predict(ctx, in)
}

func (e *CachedEngine) FeatureImportance(ctx context.Context) ([]models.FeatureImportance, error) {
	return cached(ctx, e, OpFeatureImportance, e.boundsTTL, struct{}{}, e.next.FeatureImportance)
}

// Invalidate drops every cached engine response.
func (e *CachedEngine) Invalidate(ctx context.Context) error {
	for _, op := range []string{OpFilterBounds, OpMetrics, OpHistogram, OpHeatmap, OpScatter, OpFeatureImportance} {
		if err := e.cache.DeleteByPattern(ctx, cache.Pattern(op)); err != nil {
			return err
		}
	}
	return nil
}
