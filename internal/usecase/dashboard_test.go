package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"FilingLens/internal/domain/models"
	"FilingLens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T, eng *fakeEngine) *Dashboard {
	t.Helper()
	d := NewDashboard(eng, DashboardConfig{}, nil, nil, logger.Nop())
	t.Cleanup(d.Close)
	return d
}

func TestBootstrapSeedsDatesAndRunsOneQuery(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)

	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	s := d.Snapshot()
	assert.True(t, s.Bootstrapped)
	require.NotNil(t, s.Options)
	assert.Equal(t, []string{"10-K", "10-Q"}, s.Options.FormTypes)
	assert.Equal(t, "2020-01-01", s.Filters.StartDate.String())
	assert.Equal(t, "2020-12-31", s.Filters.EndDate.String())

	calls := eng.callsOf(opMetrics)
	require.Len(t, calls, 1)
	f := calls[0].filters
	assert.Equal(t, "2020-01-01", f.StartDate.String())
	assert.Equal(t, "2020-12-31", f.EndDate.String())
	assert.Nil(t, f.IndustryCodes)
	assert.Nil(t, f.FormTypes)
	assert.Nil(t, f.MarketConditions)
	assert.Equal(t, models.SentimentNegative, f.SentimentDimension)

	assert.True(t, s.View.Loaded())
	assert.NotNil(t, s.View.Metrics)
	assert.NotEmpty(t, s.View.Histogram)
	assert.NotNil(t, s.View.Heatmap)
	assert.NotNil(t, s.View.Scatter)
	assert.Nil(t, s.View.Selected)
}

func TestBootstrapFailureIsNotFatal(t *testing.T) {
	eng := newFakeEngine()
	eng.setFail(opBounds, errEngineDown)
	d := newDashboard(t, eng)
	ctx := context.Background()

	err := d.Start(ctx)
	require.ErrorIs(t, err, errEngineDown)
	d.Wait()

	s := d.Snapshot()
	assert.False(t, s.Bootstrapped)
	assert.Contains(t, s.BootstrapError, "engine down")
	assert.Nil(t, s.Filters.StartDate)
	assert.Empty(t, eng.callsOf(opMetrics))

	// the user retries
	eng.setFail(opBounds, nil)
	require.NoError(t, d.Reload(ctx))
	d.Wait()

	s = d.Snapshot()
	assert.True(t, s.Bootstrapped)
	assert.Empty(t, s.BootstrapError)
	assert.True(t, s.View.Loaded())
	assert.Len(t, eng.callsOf(opMetrics), 1)
}

func TestSentimentChangeBeforeLoadIssuesNoRequest(t *testing.T) {
	eng := newFakeEngine()
	eng.setFail(opBounds, errEngineDown)
	d := newDashboard(t, eng)
	_ = d.Start(context.Background())

	require.NoError(t, d.SetSentiment(models.SentimentPositive))
	d.Wait()

	assert.Empty(t, eng.callsOf(opHeatmap))
	assert.Equal(t, models.SentimentPositive, d.Filters().State().SentimentDimension)
}

func TestSentimentChangeRefreshesOnlyHeatmap(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)
	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	require.NoError(t, d.SetSentiment(models.SentimentPositive))
	d.Wait()

	assert.Len(t, eng.callsOf(opMetrics), 1)
	heat := eng.callsOf(opHeatmap)
	require.Len(t, heat, 2)
	assert.Equal(t, models.SentimentPositive, heat[1].dim)

	v := d.Snapshot().View
	assert.Equal(t, models.SentimentPositive, v.HeatmapDimension)
	assert.Equal(t, []string{"Positive"}, v.Heatmap.Y)
}

func TestSentimentChangeDuringFirstQueryCatchesUp(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)

	g := eng.gateNext(opMetrics)
	require.NoError(t, d.Start(context.Background()))
	<-g.entered

	require.NoError(t, d.SetSentiment(models.SentimentUncertainty))
	close(g.release)
	d.Wait()

	v := d.Snapshot().View
	assert.True(t, v.Loaded())
	assert.Equal(t, models.SentimentUncertainty, v.HeatmapDimension)
	assert.Equal(t, []string{"Uncertainty"}, v.Heatmap.Y)
	assert.Len(t, eng.callsOf(opMetrics), 1)
}

func TestOtherFilterChangesWaitForApply(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)
	ctx := context.Background()
	require.NoError(t, d.Start(ctx))
	d.Wait()

	require.NoError(t, d.SetFilter(models.FieldFormTypes, []string{"10-K"}))
	require.NoError(t, d.SetFilter(models.FieldEndDate, "2020-06-30"))
	d.Wait()
	assert.Len(t, eng.callsOf(opMetrics), 1)

	require.NoError(t, d.ApplyFilters(ctx))
	calls := eng.callsOf(opMetrics)
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"10-K"}, calls[1].filters.FormTypes)
	assert.Equal(t, "2020-06-30", calls[1].filters.EndDate.String())

	v := d.Snapshot().View
	assert.Equal(t, uint64(2), v.Revision)
	assert.Equal(t, 101, v.Metrics.TotalFilings)
}

func TestApplyFiltersRejectsInvertedRange(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)
	ctx := context.Background()
	require.NoError(t, d.Start(ctx))
	d.Wait()

	require.NoError(t, d.SetFilter(models.FieldStartDate, "2021-01-01"))
	err := d.ApplyFilters(ctx)
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)
	assert.Len(t, eng.callsOf(opMetrics), 1)
}

func TestApplyFiltersSurvivesCallerCancel(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)
	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.ApplyFilters(ctx))
	assert.Equal(t, uint64(2), d.Snapshot().View.Revision)
}

func TestSnapshotSessionMatchesEvents(t *testing.T) {
	d := newDashboard(t, newFakeEngine())
	assert.NotEmpty(t, d.Session())
	assert.Equal(t, d.Session(), d.Events().Session())
	assert.Equal(t, d.Session(), d.Snapshot().Session)
}

func TestWatchSignalsOnChange(t *testing.T) {
	d := newDashboard(t, newFakeEngine())
	id, ch := d.Watch()

	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	_, ok := <-ch
	assert.True(t, ok)

	d.Unwatch(id)
	_, ok = <-ch
	assert.False(t, ok)
}

type invalidatingEngine struct {
	*fakeEngine
	invalidated atomic.Int32
}

func (e *invalidatingEngine) Invalidate(context.Context) error {
	e.invalidated.Add(1)
	return nil
}

func TestReloadInvalidatesCache(t *testing.T) {
	eng := &invalidatingEngine{fakeEngine: newFakeEngine()}
	d := NewDashboard(eng, DashboardConfig{}, nil, nil, logger.Nop())
	t.Cleanup(d.Close)

	require.NoError(t, d.Reload(context.Background()))
	d.Wait()
	assert.Equal(t, int32(1), eng.invalidated.Load())
	assert.True(t, d.Snapshot().View.Loaded())
}

func TestPredictionIndependentOfFilters(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)
	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	res, err := d.Prediction().Run(context.Background())
	require.NoError(t, err)
	draft := d.Prediction().Draft()

	require.NoError(t, d.SetFilter(models.FieldFormTypes, []string{"10-K"}))
	require.NoError(t, d.SetSentiment(models.SentimentPositive))
	require.NoError(t, d.ApplyFilters(context.Background()))
	d.Wait()

	got, ok := d.Prediction().Result()
	require.True(t, ok)
	assert.Equal(t, res, got)
	assert.Equal(t, draft, d.Prediction().Draft())
	assert.Equal(t, models.DefaultPredictionInput(), draft)
}

func TestSentimentRefreshIgnoresUnappliedFilterEdits(t *testing.T) {
	eng := newFakeEngine()
	d := newDashboard(t, eng)
	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	require.NoError(t, d.SetFilter(models.FieldFormTypes, []string{"10-Q"}))
	require.NoError(t, d.SetSentiment(models.SentimentLitigious))
	d.Wait()

	heat := eng.callsOf(opHeatmap)
	require.Len(t, heat, 2)
	assert.Nil(t, heat[1].filters.FormTypes)
	assert.Equal(t, models.SentimentLitigious, heat[1].dim)
	assert.Equal(t, []string{"10-Q"}, d.Filters().State().FormTypes)
}

func TestClosedDashboardStartsNoBackgroundWork(t *testing.T) {
	eng := newFakeEngine()
	d := NewDashboard(eng, DashboardConfig{}, nil, nil, logger.Nop())
	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	d.Close()
	require.NoError(t, d.SetSentiment(models.SentimentPositive))
	d.Wait()

	assert.Len(t, eng.callsOf(opHeatmap), 1)
	assert.NotPanics(t, d.Close)
}

func TestCloseRacesWithFilterChanges(t *testing.T) {
	eng := newFakeEngine()
	d := NewDashboard(eng, DashboardConfig{}, nil, nil, logger.Nop())
	require.NoError(t, d.Start(context.Background()))
	d.Wait()

	dims := []models.SentimentDimension{models.SentimentPositive, models.SentimentNegative}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = d.SetSentiment(dims[(i+j)%2])
			}
		}(i)
	}
	d.Close()
	wg.Wait()

	// nothing spawned after Close is still running
	n := len(eng.callsOf(opHeatmap))
	d.Wait()
	assert.Equal(t, n, len(eng.callsOf(opHeatmap)))
}
