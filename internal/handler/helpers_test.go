package handler

import (
	"testing"
	"time"
)

func TestParseFlexibleTimeRFC3339(t *testing.T) {
	got, err := parseFlexibleTime("2024-09-16T10:00:00Z", time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 9, 16, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseFlexibleTimeBareDateUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	got, err := parseFlexibleTime("2024-09-16", ny)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Midnight in the given zone, not UTC: a UTC-parsed bare date read
	// under an American zone lands on the evening of the previous civil
	// day and makes events invisible on their own date.
	want := time.Date(2024, 9, 16, 0, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if y, m, d := got.In(ny).Date(); y != 2024 || m != time.September || d != 16 {
		t.Errorf("civil day in zone = %d-%d-%d, want 2024-9-16", y, m, d)
	}
}

func TestParseFlexibleTimeNilLocationDefaultsLocal(t *testing.T) {
	got, err := parseFlexibleTime("2024-09-16", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 9, 16, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseFlexibleTimeInvalid(t *testing.T) {
	if _, err := parseFlexibleTime("16/09/2024", time.UTC); err == nil {
		t.Error("expected error for unsupported format")
	}
}
