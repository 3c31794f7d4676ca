package usecase

import (
	"context"
	"testing"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkstation(t *testing.T) (*fakeEngine, *PredictionWorkstation) {
	t.Helper()
	eng := newFakeEngine()
	return eng, NewPredictionWorkstation(eng, 5*time.Second, nil, nil, logger.Nop())
}

func TestPredictionStartsWithDefaultDraft(t *testing.T) {
	_, w := newWorkstation(t)

	s := w.Snapshot()
	assert.Equal(t, models.DefaultPredictionInput(), s.Draft)
	assert.Nil(t, s.Result)
	assert.False(t, s.Running)
}

func TestSetFeatureBounded(t *testing.T) {
	_, w := newWorkstation(t)

	d, err := w.SetFeature(models.FeatureComplexity, -2.5)
	require.NoError(t, err)
	assert.Equal(t, -2.5, d.Complexity)

	_, err = w.SetFeature(models.FeatureVolatility, 0.5)
	assert.ErrorIs(t, err, models.ErrFeatureOutOfRange)
	_, err = w.SetFeature(models.FeatureNegative, -1)
	assert.ErrorIs(t, err, models.ErrFeatureOutOfRange)

	d = w.Draft()
	assert.Equal(t, -2.5, d.Complexity)
	assert.Equal(t, 0.05, d.Volatility)
	assert.Equal(t, 100.0, d.Negative)

	assert.Equal(t, models.DefaultPredictionInput(), w.ResetDraft())
}

func TestRunPredictsCurrentDraft(t *testing.T) {
	eng, w := newWorkstation(t)
	_, err := w.SetFeature(models.FeatureComplexity, 1.5)
	require.NoError(t, err)

	res, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.35, res.PredictedExcessReturn)
	require.Len(t, res.SimilarFilings, 1)
	assert.Equal(t, "Acme Corp", res.SimilarFilings[0].CompanyName)

	calls := eng.callsOf(opPredict)
	require.Len(t, calls, 1)
	assert.Equal(t, 1.5, calls[0].input.Complexity)

	got, ok := w.Result()
	require.True(t, ok)
	assert.Equal(t, res, got)
}

func TestPredictRejectsOutOfRangeInput(t *testing.T) {
	eng, w := newWorkstation(t)
	in := models.DefaultPredictionInput()
	in.Size = 40

	_, err := w.Predict(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrFeatureOutOfRange)
	assert.Empty(t, eng.callsOf(opPredict))
}

func TestPredictFailureKeepsPreviousResult(t *testing.T) {
	eng, w := newWorkstation(t)
	ctx := context.Background()
	first, err := w.Run(ctx)
	require.NoError(t, err)

	eng.setFail(opPredict, errEngineDown)
	_, err = w.Run(ctx)
	require.ErrorIs(t, err, errEngineDown)

	s := w.Snapshot()
	require.NotNil(t, s.Result)
	assert.Equal(t, first, *s.Result)
	assert.Contains(t, s.Error, "engine down")
	assert.False(t, s.Running)
}

func TestLatestPredictionWins(t *testing.T) {
	eng, w := newWorkstation(t)
	ctx := context.Background()
	eng.predict = func(in models.PredictionInput) (models.PredictionResult, error) {
		return models.PredictionResult{PredictedExcessReturn: in.Complexity}, nil
	}

	g := eng.gateNext(opPredict)
	older := make(chan error, 1)
	go func() {
		in := models.DefaultPredictionInput()
		in.Complexity = 1
		_, err := w.Predict(ctx, in)
		older <- err
	}()
	<-g.entered
	assert.True(t, w.Snapshot().Running)

	in := models.DefaultPredictionInput()
	in.Complexity = 2
	_, err := w.Predict(ctx, in)
	require.NoError(t, err)

	close(g.release)
	assert.ErrorIs(t, <-older, models.ErrStaleResult)

	res, ok := w.Result()
	require.True(t, ok)
	assert.Equal(t, 2.0, res.PredictedExcessReturn)
	assert.False(t, w.Snapshot().Running)
}

func TestFeatureImportance(t *testing.T) {
	_, w := newWorkstation(t)

	fi, err := w.FeatureImportance(context.Background())
	require.NoError(t, err)
	require.Len(t, fi, 2)
	assert.Equal(t, "CCTI", fi[0].Feature)
}
