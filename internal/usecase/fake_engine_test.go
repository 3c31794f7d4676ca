package usecase

import (
	"context"
	"errors"
	"sync"

	"FilingLens/internal/domain/models"
)

const (
	opBounds     = "bounds"
	opMetrics    = "metrics"
	opHistogram  = "histogram"
	opHeatmap    = "heatmap"
	opScatter    = "scatter"
	opPredict    = "predict"
	opImportance = "importance"
)

var errEngineDown = errors.New("engine down")

type engineCall struct {
	op      string
	filters models.FilterState
	dim     models.SentimentDimension
	input   models.PredictionInput
}

// gate holds one engine call until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

type fakeEngine struct {
	mu      sync.Mutex
	bounds  models.FilterBounds
	fail    map[string]error
	gates   map[string][]*gate
	calls   []engineCall
	predict func(models.PredictionInput) (models.PredictionResult, error)
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		bounds: models.FilterBounds{
			MinDate:          models.MustDate("2020-01-01"),
			MaxDate:          models.MustDate("2020-12-31"),
			IndustryCodes:    []int{2834, 7372},
			FormTypes:        []string{"10-K", "10-Q"},
			MarketConditions: []models.MarketCondition{models.Expansion, models.Recession},
		},
		fail:  make(map[string]error),
		gates: make(map[string][]*gate),
	}
}

func (e *fakeEngine) setFail(op string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.fail, op)
		return
	}
	e.fail[op] = err
}

// gateNext blocks the next call of op until the returned gate is released.
func (e *fakeEngine) gateNext(op string) *gate {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	e.mu.Lock()
	e.gates[op] = append(e.gates[op], g)
	e.mu.Unlock()
	return g
}

func (e *fakeEngine) enter(ctx context.Context, c engineCall) error {
	e.mu.Lock()
	e.calls = append(e.calls, c)
	var g *gate
	if q := e.gates[c.op]; len(q) > 0 {
		g, e.gates[c.op] = q[0], q[1:]
	}
	err := e.fail[c.op]
	e.mu.Unlock()

	if g != nil {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (e *fakeEngine) callsOf(op string) []engineCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []engineCall
	for _, c := range e.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (e *fakeEngine) FilterBounds(ctx context.Context) (models.FilterBounds, error) {
	if err := e.enter(ctx, engineCall{op: opBounds}); err != nil {
		return models.FilterBounds{}, err
	}
	return e.bounds, nil
}

// Metrics encodes the number of selected forms in TotalFilings so tests can
// tell which filter produced a committed batch.
func (e *fakeEngine) Metrics(ctx context.Context, f models.FilterState) (models.Metrics, error) {
	if err := e.enter(ctx, engineCall{op: opMetrics, filters: f.Clone()}); err != nil {
		return models.Metrics{}, err
	}
	return models.Metrics{TotalFilings: 100 + len(f.FormTypes), AvgComplexity: -1.2, AvgExcessReturn: 0.4, AvgVolatility: 0.03}, nil
}

func (e *fakeEngine) Histogram(ctx context.Context, f models.FilterState) ([]models.HistogramBin, error) {
	if err := e.enter(ctx, engineCall{op: opHistogram, filters: f.Clone()}); err != nil {
		return nil, err
	}
	return []models.HistogramBin{{Bin: "-2.0", Count: 3}, {Bin: "-1.0", Count: 7}}, nil
}

// Heatmap labels its only row with the dimension it was asked for.
func (e *fakeEngine) Heatmap(ctx context.Context, f models.FilterState, dim models.SentimentDimension) (models.Heatmap, error) {
	if err := e.enter(ctx, engineCall{op: opHeatmap, filters: f.Clone(), dim: dim}); err != nil {
		return models.Heatmap{}, err
	}
	return models.Heatmap{X: []string{"Decile 1"}, Y: []string{string(dim)}, Z: [][]float64{{0.5}}}, nil
}

func (e *fakeEngine) ScatterAndTrend(ctx context.Context, f models.FilterState) (models.Scatter, error) {
	if err := e.enter(ctx, engineCall{op: opScatter, filters: f.Clone()}); err != nil {
		return models.Scatter{}, err
	}
	return models.Scatter{
		Points: []models.FilingRecord{
			{CompanyName: "Acme Corp", AccessionNumber: "0000001-20-000001", FilingDate: models.MustDate("2020-03-02"), Complexity: -1.5},
			{CompanyName: "Beta Inc", AccessionNumber: "0000002-20-000002", FilingDate: models.MustDate("2020-06-15"), Complexity: 0.8},
		},
		Trend: []models.TrendPoint{{X: -1.5, Y: 0.1}, {X: 0.8, Y: 0.3}},
	}, nil
}

func (e *fakeEngine) Predict(ctx context.Context, in models.PredictionInput) (models.PredictionResult, error) {
	if err := e.enter(ctx, engineCall{op: opPredict, input: in}); err != nil {
		return models.PredictionResult{}, err
	}
	e.mu.Lock()
	fn := e.predict
	e.mu.Unlock()
	if fn != nil {
		return fn(in)
	}
	return models.PredictionResult{
		PredictedExcessReturn: 2.35,
		SimilarFilings: []models.SimilarFiling{
			{CompanyName: "Acme Corp", FilingDate: models.MustDate("2019-05-01"), ExcessReturn: 2.1, Complexity: in.Complexity},
		},
	}, nil
}

func (e *fakeEngine) FeatureImportance(ctx context.Context) ([]models.FeatureImportance, error) {
	if err := e.enter(ctx, engineCall{op: opImportance}); err != nil {
		return nil, err
	}
	return []models.FeatureImportance{{Feature: "CCTI", Importance: 0.4}, {Feature: "Vol_30d", Importance: 0.3}}, nil
}
