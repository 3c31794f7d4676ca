package usecase

import (
	"context"
	"testing"

	"FilingLens/internal/domain/models"
	"FilingLens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedSelection(t *testing.T) (*QueryCoordinator, *ViewModel, *SelectionBridge) {
	t.Helper()
	_, view, coord := newCoordinator(t)
	require.NoError(t, coord.RunFullQuery(context.Background(), datedFilters()))
	return coord, view, NewSelectionBridge(view, nil, logger.Nop())
}

func TestSelectAttachedRecord(t *testing.T) {
	_, _, sel := loadedSelection(t)

	rec := models.FilingRecord{CompanyName: "Gamma LLC", AccessionNumber: "0000003-20-000003"}
	got, err := sel.Select(models.PointRef{Record: &rec})
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	cur, ok := sel.Selected()
	require.True(t, ok)
	assert.Equal(t, "Gamma LLC", cur.CompanyName)
}

func TestSelectRecordSetsExactlyThatRecord(t *testing.T) {
	_, _, sel := loadedSelection(t)

	rec := models.FilingRecord{CompanyName: "Delta SA", Complexity: 1.25}
	assert.Equal(t, rec, sel.SelectRecord(rec))
	cur, _ := sel.Selected()
	assert.Equal(t, rec, cur)
}

func TestSelectByIndex(t *testing.T) {
	_, view, sel := loadedSelection(t)
	rev := view.Snapshot().Revision

	idx := 0
	got, err := sel.Select(models.PointRef{Index: &idx, Revision: rev})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.CompanyName)
}

func TestUnresolvablePointLeavesSelection(t *testing.T) {
	coord, view, sel := loadedSelection(t)
	rev := view.Snapshot().Revision

	idx := 1
	_, err := sel.Select(models.PointRef{Index: &idx, Revision: rev})
	require.NoError(t, err)

	cases := map[string]models.PointRef{
		"empty":        {},
		"no revision":  {Index: &idx},
		"out of range": {Index: intPtr(9), Revision: rev},
		"negative":     {Index: intPtr(-1), Revision: rev},
		"future rev":   {Index: &idx, Revision: rev + 1},
	}
	for name, ref := range cases {
		_, err := sel.Select(ref)
		assert.ErrorIs(t, err, models.ErrUnresolvedPoint, name)
		cur, ok := sel.Selected()
		require.True(t, ok, name)
		assert.Equal(t, "Beta Inc", cur.CompanyName, name)
	}

	// a click rendered before the next commit does not resolve after it
	require.NoError(t, coord.RunFullQuery(context.Background(), datedFilters("10-K")))
	_, err = sel.Select(models.PointRef{Index: &idx, Revision: rev})
	assert.ErrorIs(t, err, models.ErrUnresolvedPoint)
	_, ok := sel.Selected()
	assert.False(t, ok)
}

func TestClearSelection(t *testing.T) {
	_, _, sel := loadedSelection(t)
	sel.SelectRecord(models.FilingRecord{CompanyName: "Acme Corp"})

	sel.Clear()
	_, ok := sel.Selected()
	assert.False(t, ok)
	assert.NotPanics(t, sel.Clear)
}

func intPtr(i int) *int { return &i }
