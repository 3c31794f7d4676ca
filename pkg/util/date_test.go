package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2020-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateRFC3339KeepsDay(t *testing.T) {
	got, err := ParseDate("2019-05-01T17:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDate(got) != "2019-05-01" {
		t.Fatalf("unexpected date %v", got)
	}
	if got.Hour() != 0 {
		t.Fatalf("expected time-of-day to be dropped, got %v", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("01/05/2019"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := ParseDate("  "); err == nil {
		t.Fatalf("expected error for blank input")
	}
}
