package usecase

import (
	"testing"

	"FilingLens/internal/domain/models"
	"FilingLens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterStoreStartsEmpty(t *testing.T) {
	s := NewFilterStore(logger.Nop())
	f := s.State()

	assert.Nil(t, f.StartDate)
	assert.Nil(t, f.EndDate)
	assert.Nil(t, f.IndustryCodes)
	assert.Nil(t, f.FormTypes)
	assert.Nil(t, f.MarketConditions)
	assert.Equal(t, models.SentimentNegative, f.SentimentDimension)
}

func TestFilterStoreSetFieldKeepsOtherFields(t *testing.T) {
	s := NewFilterStore(logger.Nop())
	s.SeedDateRange(models.MustDate("2020-01-01"), models.MustDate("2020-12-31"))
	require.NoError(t, s.SetField(models.FieldFormTypes, []string{"10-Q", "10-K"}))

	require.NoError(t, s.SetField(models.FieldIndustryCodes, []interface{}{float64(7372), float64(2834)}))

	f := s.State()
	assert.Equal(t, "2020-01-01", f.StartDate.String())
	assert.Equal(t, "2020-12-31", f.EndDate.String())
	assert.Equal(t, []string{"10-K", "10-Q"}, f.FormTypes)
	assert.Equal(t, []int{2834, 7372}, f.IndustryCodes)
}

func TestFilterStoreEmptySelectionMeansNoConstraint(t *testing.T) {
	s := NewFilterStore(logger.Nop())
	require.NoError(t, s.SetField(models.FieldFormTypes, []string{"10-K"}))
	require.NoError(t, s.SetField(models.FieldMarketConditions, []int{1}))

	require.NoError(t, s.SetField(models.FieldFormTypes, []string{}))
	require.NoError(t, s.SetField(models.FieldMarketConditions, nil))

	f := s.State()
	assert.Nil(t, f.FormTypes)
	assert.Nil(t, f.MarketConditions)
}

func TestFilterStoreRejectsBadInput(t *testing.T) {
	s := NewFilterStore(logger.Nop())

	err := s.SetField("ticker", "ACME")
	assert.ErrorIs(t, err, models.ErrUnknownField)

	err = s.SetField(models.FieldSentimentDimension, "Optimism")
	assert.ErrorIs(t, err, models.ErrInvalidFieldValue)

	err = s.SetField(models.FieldStartDate, "03/02/2020")
	assert.ErrorIs(t, err, models.ErrInvalidFieldValue)

	err = s.SetField(models.FieldIndustryCodes, []float64{28.5})
	assert.ErrorIs(t, err, models.ErrInvalidFieldValue)

	err = s.SetField(models.FieldMarketConditions, []int{2})
	assert.ErrorIs(t, err, models.ErrInvalidFieldValue)

	assert.Equal(t, models.NewFilterState(), s.State())
}

func TestFilterStoreAcceptsUnorderedDates(t *testing.T) {
	s := NewFilterStore(logger.Nop())
	require.NoError(t, s.SetField(models.FieldStartDate, "2021-01-01"))
	require.NoError(t, s.SetField(models.FieldEndDate, "2020-01-01"))

	f := s.State()
	assert.False(t, f.HasDateBounds())
	assert.ErrorIs(t, f.ValidateRange(), models.ErrInvalidDateRange)
}

func TestFilterStoreNotifiesOnlyOnChange(t *testing.T) {
	s := NewFilterStore(logger.Nop())
	var changes []FilterChange
	s.Subscribe(func(c FilterChange) { changes = append(changes, c) })

	require.NoError(t, s.SetField(models.FieldSentimentDimension, models.SentimentPositive))
	require.NoError(t, s.SetField(models.FieldSentimentDimension, "Positive"))
	s.SeedDateRange(models.MustDate("2020-01-01"), models.MustDate("2020-12-31"))

	require.Len(t, changes, 2)
	assert.True(t, changes[0].Has(models.FieldSentimentDimension))
	assert.Equal(t, models.SentimentNegative, changes[0].Prev.SentimentDimension)
	assert.Equal(t, models.SentimentPositive, changes[0].Next.SentimentDimension)
	assert.True(t, changes[1].Has(models.FieldStartDate))
	assert.True(t, changes[1].Has(models.FieldEndDate))
	assert.True(t, changes[1].Next.HasDateBounds())
}

func TestFilterStoreStateIsACopy(t *testing.T) {
	s := NewFilterStore(logger.Nop())
	require.NoError(t, s.SetField(models.FieldFormTypes, []string{"10-K"}))

	f := s.State()
	f.FormTypes[0] = "8-K"

	assert.Equal(t, []string{"10-K"}, s.State().FormTypes)
}
