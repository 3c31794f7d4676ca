package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/domain/repository"
	"FilingLens/internal/domain/service"
	"FilingLens/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// QueryCoordinator runs engine queries and commits their results into the view.
//
// Full and heatmap-only requests draw sequence numbers from one counter, so
// issue order is total. The view decides at commit time which results are
// stale; in-flight requests are never cancelled.
type QueryCoordinator struct {
	engine  service.QueryEngine
	view    *ViewModel
	seq     atomic.Uint64
	timeout time.Duration
	metrics repository.Metrics
	events  *EventSink
	log     *logger.Logger
}

func NewQueryCoordinator(engine service.QueryEngine, view *ViewModel, timeout time.Duration, m repository.Metrics, events *EventSink, l *logger.Logger) *QueryCoordinator {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &QueryCoordinator{
		engine:  engine,
		view:    view,
		timeout: timeout,
		metrics: m,
		events:  events,
		log:     l.Component("coordinator"),
	}
}

// RunFullQuery fetches metrics, histogram, heatmap and scatter for f
// concurrently and commits them together. On any failure nothing is
// committed and the error is returned.
func (c *QueryCoordinator) RunFullQuery(ctx context.Context, f models.FilterState) error {
	if err := f.ValidateRange(); err != nil {
		return err
	}
	snap := f.Clone()
	seq := c.seq.Add(1)

	c.view.beginFull(seq)
	c.setLoading()
	defer func() {
		c.view.endFull()
		c.setLoading()
	}()

	start := time.Now()
	res, err := c.fetchBatch(ctx, snap)
	if err != nil {
		surfaced := c.view.failBatch(seq, err)
		c.recordCommit("batch", "failed")
		c.log.Warn("full query failed",
			logger.Uint64("seq", seq),
			logger.Bool("surfaced", surfaced),
			logger.Error(err),
		)
		c.events.Emit(models.EventBatchFailed, seq, err, nil)
		return err
	}

	if err := c.view.commitBatch(seq, snap, res); err != nil {
		c.recordCommit("batch", "stale")
		c.log.Debug("full query dropped", logger.Uint64("seq", seq))
		c.events.Emit(models.EventResultDropped, seq, nil, map[string]interface{}{"kind": "batch"})
		return err
	}

	c.recordCommit("batch", "committed")
	c.log.Info("full query committed",
		logger.Uint64("seq", seq),
		logger.Int("points", len(res.Scatter.Points)),
		logger.Int("total_filings", res.Metrics.TotalFilings),
		logger.Duration("duration_ms", time.Since(start)),
	)
	c.events.Emit(models.EventBatchCommitted, seq, nil, map[string]interface{}{
		"total_filings": res.Metrics.TotalFilings,
		"points":        len(res.Scatter.Points),
		"dimension":     string(snap.SentimentDimension),
	})
	return nil
}

func (c *QueryCoordinator) fetchBatch(ctx context.Context, f models.FilterState) (models.QueryBatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// each goroutine writes a distinct field
	var res models.QueryBatchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := c.engine.Metrics(gctx, f)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		res.Metrics = m
		return nil
	})
	g.Go(func() error {
		h, err := c.engine.Histogram(gctx, f)
		if err != nil {
			return fmt.Errorf("histogram: %w", err)
		}
		res.Histogram = h
		return nil
	})
	g.Go(func() error {
		h, err := c.engine.Heatmap(gctx, f, f.SentimentDimension)
		if err != nil {
			return fmt.Errorf("heatmap: %w", err)
		}
		res.Heatmap = h
		return nil
	})
	g.Go(func() error {
		s, err := c.engine.ScatterAndTrend(gctx, f)
		if err != nil {
			return fmt.Errorf("scatter: %w", err)
		}
		res.Scatter = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.QueryBatchResult{}, err
	}
	return res, nil
}

// RefreshHeatmap re-fetches only the heatmap for dim, against the filters of
// the committed batch. Returns models.ErrNotLoaded before the first commit.
func (c *QueryCoordinator) RefreshHeatmap(ctx context.Context, dim models.SentimentDimension) error {
	basis, basisSeq, ok := c.view.heatmapBasis()
	if !ok {
		return models.ErrNotLoaded
	}
	seq := c.seq.Add(1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	h, err := c.engine.Heatmap(ctx, basis, dim)
	if err != nil {
		err = fmt.Errorf("heatmap: %w", err)
		surfaced := c.view.failHeatmap(seq, basisSeq, err)
		c.recordCommit("heatmap", "failed")
		c.log.Warn("heatmap refresh failed",
			logger.Uint64("seq", seq),
			logger.String("dimension", string(dim)),
			logger.Bool("surfaced", surfaced),
			logger.Error(err),
		)
		c.events.Emit(models.EventHeatmapFailed, seq, err, map[string]interface{}{"dimension": string(dim)})
		return err
	}

	if err := c.view.commitHeatmap(seq, basisSeq, dim, h); err != nil {
		c.recordCommit("heatmap", "stale")
		c.events.Emit(models.EventResultDropped, seq, nil, map[string]interface{}{"kind": "heatmap"})
		return err
	}
	c.recordCommit("heatmap", "committed")
	c.events.Emit(models.EventHeatmapCommitted, seq, nil, map[string]interface{}{"dimension": string(dim)})
	return nil
}

func (c *QueryCoordinator) setLoading() {
	if c.metrics != nil {
		c.metrics.SetLoading(c.view.Loading())
	}
}

func (c *QueryCoordinator) recordCommit(kind, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordCommit(kind, outcome)
	}
}

// IsStale reports whether err only means a newer request won.
func IsStale(err error) bool {
	return errors.Is(err, models.ErrStaleResult)
}
