package analytics

import (
	"testing"
	"time"
)

func TestSelectSessionBeforeOpen(t *testing.T) {
	// Series ends Friday Mar 8. Now is Monday Mar 11, 08:00, before
	// the open: market not open yet, last observation is final.
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104)
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)

	latest, previous, baseDate := SelectSession(now, s, time.UTC)
	if latest != len(s)-1 || previous != len(s)-2 {
		t.Fatalf("expected (-1,-2) selection, got (%d,%d)", latest, previous)
	}
	if !baseDate.Equal(date(2024, time.March, 8)) {
		t.Fatalf("baseDate = %v, want last trading day 2024-03-08", baseDate)
	}
}

func TestSelectSessionMidSessionShiftsBack(t *testing.T) {
	// Now is 10:30 on the date of the last observation: today's close
	// is still provisional, compare the two prior sessions instead.
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104)
	now := time.Date(2024, 3, 8, 10, 30, 0, 0, time.UTC)

	latest, previous, baseDate := SelectSession(now, s, time.UTC)
	if latest != len(s)-2 || previous != len(s)-3 {
		t.Fatalf("expected (-2,-3) selection, got (%d,%d)", latest, previous)
	}
	if !baseDate.Equal(date(2024, time.March, 7)) {
		t.Fatalf("baseDate = %v, want 2024-03-07", baseDate)
	}
}

func TestSelectSessionAfterClose(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104)
	now := time.Date(2024, 3, 8, 16, 30, 0, 0, time.UTC)

	latest, previous, baseDate := SelectSession(now, s, time.UTC)
	if latest != len(s)-1 || previous != len(s)-2 {
		t.Fatalf("expected (-1,-2) selection, got (%d,%d)", latest, previous)
	}
	if !baseDate.Equal(date(2024, time.March, 8)) {
		t.Fatalf("baseDate = %v, want 2024-03-08", baseDate)
	}
}

func TestSelectSessionTwoObservationsNeverShift(t *testing.T) {
	// The mid-session shift needs a third observation to fall back on.
	s := bdaySeries(time.UTC, 2024, time.March, 7, 100, 101)
	now := time.Date(2024, 3, 8, 11, 0, 0, 0, time.UTC)

	latest, previous, _ := SelectSession(now, s, time.UTC)
	if latest != 1 || previous != 0 {
		t.Fatalf("expected (1,0), got (%d,%d)", latest, previous)
	}
}

func TestSelectSessionExactOpenBoundary(t *testing.T) {
	// 09:30 sharp counts as open; 09:29 does not.
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104)

	latest, _, _ := SelectSession(time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC), s, time.UTC)
	if latest != len(s)-2 {
		t.Fatalf("09:30 should count as open, latest = %d", latest)
	}
	latest, _, _ = SelectSession(time.Date(2024, 3, 8, 9, 29, 0, 0, time.UTC), s, time.UTC)
	if latest != len(s)-1 {
		t.Fatalf("09:29 should count as closed, latest = %d", latest)
	}
}
