package scheduler

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	t.Parallel()

	s := NewDailyScheduler(5, 30, time.UTC)

	before := time.Date(2025, 2, 20, 4, 0, 0, 0, time.UTC)
	next := s.nextRun(before)
	if want := time.Date(2025, 2, 20, 5, 30, 0, 0, time.UTC); !next.Equal(want) {
		t.Fatalf("before trigger time: got %v want %v", next, want)
	}

	after := time.Date(2025, 2, 20, 6, 0, 0, 0, time.UTC)
	next = s.nextRun(after)
	if want := time.Date(2025, 2, 21, 5, 30, 0, 0, time.UTC); !next.Equal(want) {
		t.Fatalf("after trigger time: got %v want %v", next, want)
	}

	exact := time.Date(2025, 2, 20, 5, 30, 0, 0, time.UTC)
	next = s.nextRun(exact)
	if !next.After(exact) {
		t.Fatalf("next run must be strictly after now: %v", next)
	}
}
