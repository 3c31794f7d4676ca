package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/domain/repository"
	"FilingLens/internal/domain/service"
	"FilingLens/pkg/logger"
)

// PredictionWorkstation owns the what-if draft and the latest prediction.
// It never reads or writes filter state.
type PredictionWorkstation struct {
	predictor service.Predictor
	timeout   time.Duration
	metrics   repository.Metrics
	events    *EventSink
	log       *logger.Logger

	mu        sync.RWMutex
	draft     models.PredictionInput
	result    *models.PredictionResult
	lastErr   error
	issued    uint64
	committed uint64
	running   int
	onChange  func()
}

func NewPredictionWorkstation(p service.Predictor, timeout time.Duration, m repository.Metrics, events *EventSink, l *logger.Logger) *PredictionWorkstation {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PredictionWorkstation{
		predictor: p,
		timeout:   timeout,
		metrics:   m,
		events:    events,
		log:       l.Component("prediction"),
		draft:     models.DefaultPredictionInput(),
	}
}

// OnChange sets a hook called after every visible change.
func (w *PredictionWorkstation) OnChange(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *PredictionWorkstation) changed() {
	w.mu.RLock()
	fn := w.onChange
	w.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (w *PredictionWorkstation) Draft() models.PredictionInput {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.draft
}

// SetFeature updates one draft field. Out-of-range values are rejected
// with models.ErrFeatureOutOfRange and the draft is unchanged.
func (w *PredictionWorkstation) SetFeature(f models.FeatureField, v float64) (models.PredictionInput, error) {
	w.mu.Lock()
	next, err := w.draft.With(f, v)
	if err != nil {
		cur := w.draft
		w.mu.Unlock()
		return cur, err
	}
	w.draft = next
	w.mu.Unlock()

	w.changed()
	return next, nil
}

// ResetDraft restores the default draft.
func (w *PredictionWorkstation) ResetDraft() models.PredictionInput {
	w.mu.Lock()
	w.draft = models.DefaultPredictionInput()
	d := w.draft
	w.mu.Unlock()

	w.changed()
	return d
}

// Run predicts with the current draft.
func (w *PredictionWorkstation) Run(ctx context.Context) (models.PredictionResult, error) {
	return w.Predict(ctx, w.Draft())
}

// Predict submits in and, on success, replaces the whole result. A failed
// call keeps the previous result. If a later call has already committed,
// the result is dropped with models.ErrStaleResult.
func (w *PredictionWorkstation) Predict(ctx context.Context, in models.PredictionInput) (models.PredictionResult, error) {
	if err := in.Validate(); err != nil {
		return models.PredictionResult{}, err
	}

	w.mu.Lock()
	w.issued++
	seq := w.issued
	w.running++
	w.mu.Unlock()
	w.changed()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	res, err := w.predictor.Predict(ctx, in)
	cancel()

	w.mu.Lock()
	w.running--
	var outcome string
	switch {
	case err != nil:
		outcome = "failed"
		if seq == w.issued {
			w.lastErr = err
		}
	case seq <= w.committed:
		outcome = "stale"
	default:
		outcome = "committed"
		r := res
		w.result = &r
		w.committed = seq
		w.lastErr = nil
	}
	w.mu.Unlock()
	w.changed()

	if w.metrics != nil {
		w.metrics.RecordCommit("prediction", outcome)
	}

	switch outcome {
	case "failed":
		w.log.Warn("prediction failed", logger.Uint64("seq", seq), logger.Error(err))
		w.events.Emit(models.EventPredictionFailed, seq, err, nil)
		return models.PredictionResult{}, err
	case "stale":
		w.events.Emit(models.EventResultDropped, seq, nil, map[string]interface{}{"kind": "prediction"})
		return models.PredictionResult{}, fmt.Errorf("%w: prediction %d", models.ErrStaleResult, seq)
	}

	w.log.Info("prediction committed",
		logger.Uint64("seq", seq),
		logger.Float64("predicted_excess_return", res.PredictedExcessReturn),
		logger.Int("similar", len(res.SimilarFilings)),
	)
	w.events.Emit(models.EventPredictionCommitted, seq, nil, map[string]interface{}{
		"predicted_excess_return": res.PredictedExcessReturn,
	})
	return res, nil
}

// Result returns the last committed prediction.
func (w *PredictionWorkstation) Result() (models.PredictionResult, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.result == nil {
		return models.PredictionResult{}, false
	}
	return *w.result, true
}

func (w *PredictionWorkstation) Snapshot() models.PredictionSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := models.PredictionSnapshot{
		Draft:   w.draft,
		Result:  w.result,
		Running: w.running > 0,
	}
	if w.lastErr != nil {
		s.Error = w.lastErr.Error()
	}
	return s
}

// FeatureImportance passes through to the engine's model introspection.
func (w *PredictionWorkstation) FeatureImportance(ctx context.Context) ([]models.FeatureImportance, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.predictor.FeatureImportance(ctx)
}
