package usecase

import (
	"context"
	"sync"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/domain/service"
	"FilingLens/pkg/logger"
)

// BootstrapLoader fetches the valid filter values and seeds the date range.
type BootstrapLoader struct {
	engine  service.QueryEngine
	filters *FilterStore
	events  *EventSink
	log     *logger.Logger

	mu     sync.RWMutex
	bounds *models.FilterBounds
	err    error
}

func NewBootstrapLoader(engine service.QueryEngine, filters *FilterStore, events *EventSink, l *logger.Logger) *BootstrapLoader {
	return &BootstrapLoader{
		engine:  engine,
		filters: filters,
		events:  events,
		log:     l.Component("bootstrap"),
	}
}

// Load performs one fetch. On failure the loader stays unloaded (or keeps
// the options of an earlier success) and the error is returned for
// reporting; callers must treat it as non-fatal.
func (b *BootstrapLoader) Load(ctx context.Context) error {
	bounds, err := b.engine.FilterBounds(ctx)
	if err != nil {
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()

		b.log.Warn("filter bounds unavailable, dashboard stays unloaded", logger.Error(err))
		b.events.Emit(models.EventBootstrapFailed, 0, err, nil)
		return err
	}

	b.mu.Lock()
	b.bounds = &bounds
	b.err = nil
	b.mu.Unlock()

	b.log.Info("filter bounds loaded",
		logger.String("min_date", bounds.MinDate.String()),
		logger.String("max_date", bounds.MaxDate.String()),
		logger.Int("industries", len(bounds.IndustryCodes)),
		logger.Int("forms", len(bounds.FormTypes)),
	)
	b.events.Emit(models.EventBootstrapLoaded, 0, nil, map[string]interface{}{
		"min_date": bounds.MinDate.String(),
		"max_date": bounds.MaxDate.String(),
	})

	// seeding is what triggers the first full query
	b.filters.SeedDateRange(bounds.MinDate, bounds.MaxDate)
	return nil
}

// Options returns the loaded option lists, or nil while unloaded.
func (b *BootstrapLoader) Options() *models.FilterBounds {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.bounds == nil {
		return nil
	}
	o := *b.bounds
	return &o
}

// Loaded reports whether any Load has succeeded.
func (b *BootstrapLoader) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bounds != nil
}

// Err returns the error of the most recent failed Load, cleared on success.
func (b *BootstrapLoader) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}
