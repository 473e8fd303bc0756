package calendar

import (
	"errors"
	"testing"
	"time"
)

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	return Interval{Start: s, End: e}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{
			"disjoint",
			mustInterval(t, "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
			mustInterval(t, "2025-03-03T11:00:00Z", "2025-03-03T12:00:00Z"),
			false,
		},
		{
			"touching endpoints do not overlap",
			mustInterval(t, "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
			mustInterval(t, "2025-03-03T10:00:00Z", "2025-03-03T11:00:00Z"),
			false,
		},
		{
			"partial overlap",
			mustInterval(t, "2025-03-03T09:00:00Z", "2025-03-03T10:30:00Z"),
			mustInterval(t, "2025-03-03T10:00:00Z", "2025-03-03T11:00:00Z"),
			true,
		},
		{
			"containment",
			mustInterval(t, "2025-03-03T09:00:00Z", "2025-03-03T17:00:00Z"),
			mustInterval(t, "2025-03-03T12:00:00Z", "2025-03-03T13:00:00Z"),
			true,
		},
		{
			"identical",
			mustInterval(t, "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
			mustInterval(t, "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Overlaps(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Overlap is symmetric.
			reversed, err := Overlaps(tt.b, tt.a)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reversed != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, reversed, tt.want)
			}
		})
	}
}

func TestOverlapsInvalidInterval(t *testing.T) {
	valid := mustInterval(t, "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z")
	inverted := Interval{Start: valid.End, End: valid.Start}
	empty := Interval{Start: valid.Start, End: valid.Start}

	for _, bad := range []Interval{inverted, empty} {
		if _, err := Overlaps(bad, valid); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("expected ErrInvalidInterval for %v, got %v", bad, err)
		}
		if _, err := Overlaps(valid, bad); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("expected ErrInvalidInterval for %v, got %v", bad, err)
		}
	}
}
