package usecase

import (
	"context"
	"sync"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/domain/repository"
	"FilingLens/internal/domain/service"
	"FilingLens/pkg/logger"

	"github.com/google/uuid"
)

// CacheInvalidator is implemented by engines that cache responses.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type DashboardConfig struct {
	QueryTimeout   time.Duration
	PredictTimeout time.Duration
}

// Dashboard is one analysis session. It owns the filter store, view,
// coordinator, selection and prediction, and reacts to filter changes:
//
//   - the first time the filters hold a valid date range, a full query runs;
//   - a sentiment change refreshes only the heatmap, once something is loaded;
//   - other filter changes wait for ApplyFilters.
type Dashboard struct {
	session    string
	filters    *FilterStore
	view       *ViewModel
	coord      *QueryCoordinator
	bootstrap  *BootstrapLoader
	selection  *SelectionBridge
	prediction *PredictionWorkstation
	events     *EventSink
	engine     service.AnalyticsEngine
	log        *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// guards wg.Add against Close's Wait
	spawnMu sync.Mutex
	closed  bool

	autoMu      sync.Mutex
	autoQueried bool

	watchMu   sync.Mutex
	watchers  map[int]chan struct{}
	nextWatch int
}

func NewDashboard(engine service.AnalyticsEngine, cfg DashboardConfig, m repository.Metrics, queue EventQueue, l *logger.Logger) *Dashboard {
	session := uuid.NewString()
	log := l.With(logger.String("session", session))
	events := NewEventSink(session, queue)

	filters := NewFilterStore(log)
	view := NewViewModel()

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		session:    session,
		filters:    filters,
		view:       view,
		coord:      NewQueryCoordinator(engine, view, cfg.QueryTimeout, m, events, log),
		bootstrap:  NewBootstrapLoader(engine, filters, events, log),
		selection:  NewSelectionBridge(view, events, log),
		prediction: NewPredictionWorkstation(engine, cfg.PredictTimeout, m, events, log),
		events:     events,
		engine:     engine,
		log:        log.Component("dashboard"),
		ctx:        ctx,
		cancel:     cancel,
		watchers:   make(map[int]chan struct{}),
	}

	filters.Subscribe(d.onFilterChange)
	view.OnChange(d.notifyWatchers)
	d.prediction.OnChange(d.notifyWatchers)
	return d
}

func (d *Dashboard) Session() string                    { return d.session }
func (d *Dashboard) Filters() *FilterStore              { return d.filters }
func (d *Dashboard) View() *ViewModel                   { return d.view }
func (d *Dashboard) Coordinator() *QueryCoordinator     { return d.coord }
func (d *Dashboard) Selection() *SelectionBridge        { return d.selection }
func (d *Dashboard) Prediction() *PredictionWorkstation { return d.prediction }
func (d *Dashboard) Events() *EventSink                 { return d.events }

// Start runs the bootstrap load. A failure leaves the session usable but
// unloaded; the error is returned for reporting only.
func (d *Dashboard) Start(ctx context.Context) error {
	return d.bootstrap.Load(ctx)
}

// Reload drops cached engine responses and repeats the bootstrap load.
func (d *Dashboard) Reload(ctx context.Context) error {
	if inv, ok := d.engine.(CacheInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			d.log.Warn("cache invalidation failed", logger.Error(err))
		}
	}
	return d.bootstrap.Load(ctx)
}

// SetFilter sets one filter field without querying.
func (d *Dashboard) SetFilter(field models.FilterField, value interface{}) error {
	return d.filters.SetField(field, value)
}

// SetSentiment changes the heatmap dimension. The refresh, if any, runs in the background.
func (d *Dashboard) SetSentiment(dim models.SentimentDimension) error {
	return d.filters.SetField(models.FieldSentimentDimension, dim)
}

// ApplyFilters runs a full query with the current filters and waits for it.
// The query outlives ctx's cancellation so a disconnecting caller cannot
// leave the view half-updated.
func (d *Dashboard) ApplyFilters(ctx context.Context) error {
	return d.runFull(context.WithoutCancel(ctx), d.filters.State())
}

func (d *Dashboard) runFull(ctx context.Context, f models.FilterState) error {
	if err := d.coord.RunFullQuery(ctx, f); err != nil {
		return err
	}
	d.syncHeatmap(ctx)
	return nil
}

// syncHeatmap catches up with a sentiment change made while the batch was
// in flight: the committed heatmap carries the batch's dimension.
func (d *Dashboard) syncHeatmap(ctx context.Context) {
	want := d.filters.State().SentimentDimension
	if want == d.view.heatmapDimension() {
		return
	}
	if err := d.coord.RefreshHeatmap(ctx, want); err != nil && !IsStale(err) {
		d.log.Debug("heatmap catch-up failed", logger.String("dimension", string(want)), logger.Error(err))
	}
}

func (d *Dashboard) onFilterChange(c FilterChange) {
	fields := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = string(f)
	}
	d.events.Emit(models.EventFiltersChanged, 0, nil, map[string]interface{}{"fields": fields})

	if c.Next.HasDateBounds() && d.claimAutoQuery() {
		f := c.Next
		d.log.Info("date range available, running first query")
		d.spawn(func(ctx context.Context) {
			if err := d.runFull(ctx, f); err != nil && !IsStale(err) {
				d.log.Warn("first query failed", logger.Error(err))
			}
		})
		return
	}

	if c.Has(models.FieldSentimentDimension) && d.view.Loaded() {
		dim := c.Next.SentimentDimension
		d.spawn(func(ctx context.Context) {
			if err := d.coord.RefreshHeatmap(ctx, dim); err != nil && !IsStale(err) {
				d.log.Debug("heatmap refresh failed", logger.Error(err))
			}
		})
	}
}

func (d *Dashboard) claimAutoQuery() bool {
	d.autoMu.Lock()
	defer d.autoMu.Unlock()
	if d.autoQueried {
		return false
	}
	d.autoQueried = true
	return true
}

func (d *Dashboard) spawn(fn func(ctx context.Context)) {
	d.spawnMu.Lock()
	defer d.spawnMu.Unlock()
	if d.closed {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn(d.ctx)
	}()
}

// Wait blocks until background queries started so far have settled.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

// Snapshot returns everything needed to render the session.
func (d *Dashboard) Snapshot() models.DashboardSnapshot {
	s := models.DashboardSnapshot{
		Session:      d.session,
		Bootstrapped: d.bootstrap.Loaded(),
		Options:      d.bootstrap.Options(),
		Filters:      d.filters.State(),
		View:         d.view.Snapshot(),
		Prediction:   d.prediction.Snapshot(),
	}
	if err := d.bootstrap.Err(); err != nil {
		s.BootstrapError = err.Error()
	}
	return s
}

// Watch returns a channel signalled after any view or prediction change.
// Signals coalesce; read Snapshot after each one.
func (d *Dashboard) Watch() (int, <-chan struct{}) {
	d.watchMu.Lock()
	defer d.watchMu.Unlock()
	id := d.nextWatch
	d.nextWatch++
	ch := make(chan struct{}, 1)
	d.watchers[id] = ch
	return id, ch
}

func (d *Dashboard) Unwatch(id int) {
	d.watchMu.Lock()
	defer d.watchMu.Unlock()
	if ch, ok := d.watchers[id]; ok {
		close(ch)
		delete(d.watchers, id)
	}
}

func (d *Dashboard) notifyWatchers() {
	d.watchMu.Lock()
	defer d.watchMu.Unlock()
	for _, ch := range d.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close stops background work and waits for it.
func (d *Dashboard) Close() {
	d.spawnMu.Lock()
	d.closed = true
	d.spawnMu.Unlock()

	d.cancel()
	d.wg.Wait()

	d.watchMu.Lock()
	for id, ch := range d.watchers {
		close(ch)
		delete(d.watchers, id)
	}
	d.watchMu.Unlock()
}
