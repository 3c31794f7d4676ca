package models

import (
	"fmt"
	"math"
)

// FeatureField names one prediction input. Values match the engine's keys.
type FeatureField string

const (
	FeatureComplexity   FeatureField = "CCTI"
	FeatureVolatility   FeatureField = "Vol_30d"
	FeatureMomentum     FeatureField = "Momentum_12_1"
	FeatureBookToMarket FeatureField = "BM_w"
	FeatureSize         FeatureField = "Size_w"
	FeatureNegative     FeatureField = "Negative"
	FeaturePositive     FeatureField = "Positive"
)

// FeatureRange is the inclusive interval a draft value must stay in.
type FeatureRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

func (r FeatureRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FeatureRanges are the editable bounds, in display order.
var FeatureRanges = []struct {
	Field FeatureField
	Range FeatureRange
}{
	{FeatureComplexity, FeatureRange{Min: -5, Max: 5, Step: 0.1}},
	{FeatureVolatility, FeatureRange{Min: 0, Max: 0.2, Step: 0.001}},
	{FeatureMomentum, FeatureRange{Min: -1, Max: 1, Step: 0.01}},
	{FeatureBookToMarket, FeatureRange{Min: 0, Max: 2, Step: 0.01}},
	{FeatureSize, FeatureRange{Min: 0, Max: 15, Step: 0.1}},
	{FeatureNegative, FeatureRange{Min: 0, Max: 2000, Step: 1}},
	{FeaturePositive, FeatureRange{Min: 0, Max: 2000, Step: 1}},
}

// RangeOf looks up the bounds of f.
func RangeOf(f FeatureField) (FeatureRange, bool) {
	for _, fr := range FeatureRanges {
		if fr.Field == f {
			return fr.Range, true
		}
	}
	return FeatureRange{}, false
}

// PredictionInput is the what-if feature vector. JSON keys are the engine's.
type PredictionInput struct {
	Complexity   float64 `json:"CCTI"`
	Volatility   float64 `json:"Vol_30d"`
	Momentum     float64 `json:"Momentum_12_1"`
	BookToMarket float64 `json:"BM_w"`
	Size         float64 `json:"Size_w"`
	Negative     float64 `json:"Negative"`
	Positive     float64 `json:"Positive"`
}

// DefaultPredictionInput is a representative mid-sample filing.
func DefaultPredictionInput() PredictionInput {
	return PredictionInput{
		Complexity:   -1.9,
		Volatility:   0.05,
		Momentum:     0.1,
		BookToMarket: 0.5,
		Size:         5.0,
		Negative:     100,
		Positive:     50,
	}
}

func (p *PredictionInput) field(f FeatureField) (*float64, error) {
	switch f {
	case FeatureComplexity:
		return &p.Complexity, nil
	case FeatureVolatility:
		return &p.Volatility, nil
	case FeatureMomentum:
		return &p.Momentum, nil
	case FeatureBookToMarket:
		return &p.BookToMarket, nil
	case FeatureSize:
		return &p.Size, nil
	case FeatureNegative:
		return &p.Negative, nil
	case FeaturePositive:
		return &p.Positive, nil
	}
	return nil, fmt.Errorf("%w: feature %q", ErrUnknownField, f)
}

// Get returns the value of f.
func (p PredictionInput) Get(f FeatureField) (float64, error) {
	ptr, err := p.field(f)
	if err != nil {
		return 0, err
	}
	return *ptr, nil
}

// With returns a copy with f set to v, rejecting values outside f's range.
func (p PredictionInput) With(f FeatureField, v float64) (PredictionInput, error) {
	ptr, err := p.field(f)
	if err != nil {
		return p, err
	}
	r, _ := RangeOf(f)
	if math.IsNaN(v) || !r.Contains(v) {
		return p, fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrFeatureOutOfRange, f, v, r.Min, r.Max)
	}
	*ptr = v
	return p, nil
}

// Validate checks every field against its range.
func (p PredictionInput) Validate() error {
	for _, fr := range FeatureRanges {
		v, _ := p.Get(fr.Field)
		if math.IsNaN(v) || !fr.Range.Contains(v) {
			return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrFeatureOutOfRange, fr.Field, v, fr.Range.Min, fr.Range.Max)
		}
	}
	return nil
}

// SimilarFiling is the subset of a filing returned by the nearest-neighbour search.
type SimilarFiling struct {
	CompanyName     string  `json:"company_name"`
	AccessionNumber string  `json:"accession_number,omitempty"`
	FilingDate      Date    `json:"filing_date"`
	ExcessReturn    float64 `json:"excess_return"`
	Complexity      float64 `json:"ccti"`
}

// PredictionResult is replaced as a whole on each successful prediction.
type PredictionResult struct {
	PredictedExcessReturn float64         `json:"predicted_excess_return"`
	SimilarFilings        []SimilarFiling `json:"similar_filings"`
}

// FeatureImportance is one model feature's weight, as reported by the engine.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}
