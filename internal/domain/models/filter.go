package models

import (
	"fmt"
	"slices"
	"sort"
)

// SentimentDimension is the word-count category used as the heatmap's y axis.
type SentimentDimension string

const (
	SentimentNegative    SentimentDimension = "Negative"
	SentimentPositive    SentimentDimension = "Positive"
	SentimentUncertainty SentimentDimension = "Uncertainty"
	SentimentLitigious   SentimentDimension = "Litigious"
	SentimentStrongModal SentimentDimension = "StrongModal"
)

// SentimentDimensions lists every dimension in display order.
var SentimentDimensions = []SentimentDimension{
	SentimentNegative,
	SentimentPositive,
	SentimentUncertainty,
	SentimentLitigious,
	SentimentStrongModal,
}

func (d SentimentDimension) Valid() bool {
	return slices.Contains(SentimentDimensions, d)
}

// ParseSentimentDimension validates s.
func ParseSentimentDimension(s string) (SentimentDimension, error) {
	d := SentimentDimension(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: sentiment dimension %q", ErrInvalidFieldValue, s)
	}
	return d, nil
}

// MarketCondition is the macro regime flag attached to each filing.
type MarketCondition int

const (
	Expansion MarketCondition = 0
	Recession MarketCondition = 1
)

func (m MarketCondition) Valid() bool {
	return m == Expansion || m == Recession
}

func (m MarketCondition) String() string {
	switch m {
	case Expansion:
		return "Expansion"
	case Recession:
		return "Recession"
	default:
		return fmt.Sprintf("MarketCondition(%d)", int(m))
	}
}

// FilterField names a settable FilterState field. Values match the wire keys.
type FilterField string

const (
	FieldStartDate          FilterField = "start_date"
	FieldEndDate            FilterField = "end_date"
	FieldIndustryCodes      FilterField = "sics"
	FieldFormTypes          FilterField = "forms"
	FieldMarketConditions   FilterField = "market_conditions"
	FieldSentimentDimension FilterField = "sentiment_dimension"
)

// QueryFields are the fields sent to the engine with every query.
var QueryFields = []FilterField{
	FieldStartDate,
	FieldEndDate,
	FieldIndustryCodes,
	FieldFormTypes,
	FieldMarketConditions,
}

// FilterState is the full set of query parameters.
//
// A nil slice means "no constraint". The store never keeps an empty,
// non-nil slice: an empty selection must match everything, not nothing.
type FilterState struct {
	StartDate          *Date              `json:"start_date,omitempty"`
	EndDate            *Date              `json:"end_date,omitempty"`
	IndustryCodes      []int              `json:"sics,omitempty"`
	FormTypes          []string           `json:"forms,omitempty"`
	MarketConditions   []MarketCondition  `json:"market_conditions,omitempty"`
	SentimentDimension SentimentDimension `json:"sentiment_dimension"`
}

// NewFilterState returns the startup state: no bounds, no constraints, Negative.
func NewFilterState() FilterState {
	return FilterState{SentimentDimension: SentimentNegative}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (f FilterState) Clone() FilterState {
	out := f
	if f.StartDate != nil {
		d := *f.StartDate
		out.StartDate = &d
	}
	if f.EndDate != nil {
		d := *f.EndDate
		out.EndDate = &d
	}
	out.IndustryCodes = slices.Clone(f.IndustryCodes)
	out.FormTypes = slices.Clone(f.FormTypes)
	out.MarketConditions = slices.Clone(f.MarketConditions)
	return out
}

// HasDateBounds reports whether both dates are set and ordered.
func (f FilterState) HasDateBounds() bool {
	return f.StartDate != nil && f.EndDate != nil && !f.StartDate.After(f.EndDate.Time)
}

// ValidateRange returns ErrInvalidDateRange unless HasDateBounds holds.
func (f FilterState) ValidateRange() error {
	switch {
	case f.StartDate == nil || f.EndDate == nil:
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	case f.StartDate.After(f.EndDate.Time):
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, f.StartDate, f.EndDate)
	}
	return nil
}

// NormalizeInts sorts and dedups codes and collapses an empty result to nil.
func NormalizeInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	sort.Ints(out)
	return slices.Compact(out)
}

// NormalizeStrings sorts, dedups and drops blanks; empty collapses to nil.
func NormalizeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return slices.Compact(out)
}

// NormalizeConditions validates, sorts and dedups; empty collapses to nil.
func NormalizeConditions(in []MarketCondition) ([]MarketCondition, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := slices.Clone(in)
	for _, m := range out {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: market condition %d", ErrInvalidFieldValue, int(m))
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
