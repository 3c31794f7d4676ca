package usecase

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/pkg/logger"
)

// FilterChange describes one committed mutation of the filter state.
type FilterChange struct {
	Fields []models.FilterField
	Prev   models.FilterState
	Next   models.FilterState
}

// Has reports whether f is among the changed fields.
func (c FilterChange) Has(f models.FilterField) bool {
	for _, x := range c.Fields {
		if x == f {
			return true
		}
	}
	return false
}

// FilterListener is called synchronously after every change, outside the store lock.
type FilterListener func(FilterChange)

// FilterStore owns the session's FilterState. It is the only writer.
type FilterStore struct {
	mu        sync.RWMutex
	state     models.FilterState
	listeners []FilterListener
	log       *logger.Logger
}

func NewFilterStore(l *logger.Logger) *FilterStore {
	return &FilterStore{
		state: models.NewFilterState(),
		log:   l.Component("filters"),
	}
}

// State returns a copy of the current filters.
func (s *FilterStore) State() models.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn for every future change.
func (s *FilterStore) Subscribe(fn FilterListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// SetField replaces one field and keeps the others.
//
// Multi-select fields accept a slice; an empty or nil slice unsets the
// field. Dates accept a models.Date, time.Time or "YYYY-MM-DD"; nil or ""
// unsets them. Date ordering is checked when a query runs, not here.
func (s *FilterStore) SetField(field models.FilterField, value interface{}) error {
	s.mu.Lock()
	next := s.state.Clone()
	if err := assign(&next, field, value); err != nil {
		s.mu.Unlock()
		return err
	}
	change, changed := s.commitLocked(next, field)
	s.mu.Unlock()

	if changed {
		s.notify(change)
	}
	return nil
}

// SeedDateRange sets both dates in one change. Used by bootstrap.
func (s *FilterStore) SeedDateRange(min, max models.Date) {
	s.mu.Lock()
	next := s.state.Clone()
	next.StartDate, next.EndDate = &min, &max
	change, changed := s.commitLocked(next, models.FieldStartDate, models.FieldEndDate)
	s.mu.Unlock()

	if changed {
		s.log.Info("date range seeded",
			logger.String("start", min.String()),
			logger.String("end", max.String()),
		)
		s.notify(change)
	}
}

func (s *FilterStore) commitLocked(next models.FilterState, fields ...models.FilterField) (FilterChange, bool) {
	if reflect.DeepEqual(s.state, next) {
		return FilterChange{}, false
	}
	prev := s.state
	s.state = next
	return FilterChange{Fields: fields, Prev: prev.Clone(), Next: next.Clone()}, true
}

func (s *FilterStore) notify(c FilterChange) {
	s.mu.RLock()
	listeners := append([]FilterListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(c)
	}
}

func assign(f *models.FilterState, field models.FilterField, value interface{}) error {
	switch field {
	case models.FieldStartDate:
		d, err := toDate(value)
		if err != nil {
			return fieldErr(field, err)
		}
		f.StartDate = d
	case models.FieldEndDate:
		d, err := toDate(value)
		if err != nil {
			return fieldErr(field, err)
		}
		f.EndDate = d
	case models.FieldIndustryCodes:
		codes, err := toInts(value)
		if err != nil {
			return fieldErr(field, err)
		}
		f.IndustryCodes = models.NormalizeInts(codes)
	case models.FieldFormTypes:
		forms, err := toStrings(value)
		if err != nil {
			return fieldErr(field, err)
		}
		f.FormTypes = models.NormalizeStrings(forms)
	case models.FieldMarketConditions:
		conds, err := toConditions(value)
		if err != nil {
			return fieldErr(field, err)
		}
		norm, err := models.NormalizeConditions(conds)
		if err != nil {
			return err
		}
		f.MarketConditions = norm
	case models.FieldSentimentDimension:
		var s string
		switch v := value.(type) {
		case models.SentimentDimension:
			s = string(v)
		case string:
			s = v
		default:
			return fieldErr(field, fmt.Errorf("unsupported type %T", value))
		}
		d, err := models.ParseSentimentDimension(s)
		if err != nil {
			return err
		}
		f.SentimentDimension = d
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownField, field)
	}
	return nil
}

func fieldErr(field models.FilterField, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrInvalidFieldValue, field, err)
}

func toDate(v interface{}) (*models.Date, error) {
	switch d := v.(type) {
	case nil:
		return nil, nil
	case models.Date:
		return &d, nil
	case *models.Date:
		if d == nil {
			return nil, nil
		}
		c := *d
		return &c, nil
	case time.Time:
		nd := models.NewDate(d)
		return &nd, nil
	case string:
		if d == "" {
			return nil, nil
		}
		parsed, err := models.ParseDate(d)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

// toInts also accepts []float64 and []interface{} of numbers, as decoded from JSON.
func toInts(v interface{}) ([]int, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []int:
		return s, nil
	case []float64:
		out := make([]int, 0, len(s))
		for _, f := range s {
			n, err := wholeNumber(f)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []interface{}:
		out := make([]int, 0, len(s))
		for _, e := range s {
			switch n := e.(type) {
			case int:
				out = append(out, n)
			case float64:
				i, err := wholeNumber(n)
				if err != nil {
					return nil, err
				}
				out = append(out, i)
			default:
				return nil, fmt.Errorf("element of type %T", e)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

func wholeNumber(f float64) (int, error) {
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%g is not a whole number", f)
	}
	return int(f), nil
}

func toStrings(v interface{}) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return s, nil
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element of type %T", e)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

func toConditions(v interface{}) ([]models.MarketCondition, error) {
	if conds, ok := v.([]models.MarketCondition); ok {
		return conds, nil
	}
	ints, err := toInts(v)
	if err != nil {
		return nil, err
	}
	out := make([]models.MarketCondition, len(ints))
	for i, n := range ints {
		out[i] = models.MarketCondition(n)
	}
	return out, nil
}
