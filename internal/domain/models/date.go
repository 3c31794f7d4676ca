package models

import (
	"encoding/json"
	"fmt"
	"time"

	"FilingLens/pkg/util"
)

// Date is a calendar day in UTC. It marshals as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC day.
func NewDate(t time.Time) Date {
	return Date{util.TruncateDay(t)}
}

// ParseDate accepts "YYYY-MM-DD" (or an RFC3339 timestamp, keeping its day).
func ParseDate(s string) (Date, error) {
	t, err := util.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// MustDate panics on malformed input. Intended for tests and constants.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return util.FormatDate(d.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
