package analytics

import (
	"testing"
	"time"

	"ETFSheet/internal/domain/models"
)

// bdaySeries builds a series of consecutive business-day closes
// starting at the given date, skipping weekends. Observations are
// stamped at 16:00 in loc, one per session.
func bdaySeries(loc *time.Location, year int, month time.Month, day int, closes ...float64) models.PriceSeries {
	s := make(models.PriceSeries, 0, len(closes))
	d := time.Date(year, month, day, 16, 0, 0, 0, loc)
	for _, c := range closes {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		s = append(s, models.PricePoint{Time: d, Close: c})
		d = d.AddDate(0, 0, 1)
	}
	return s
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestTradingDaysDeduplicates(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102)
	// Duplicate session on the first date.
	s = append(models.PriceSeries{{Time: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), Close: 99}}, s...)
	days := TradingDays(s, time.UTC)
	if len(days) != 3 {
		t.Fatalf("expected 3 trading days, got %d", len(days))
	}
	if !days[0].Equal(date(2024, time.March, 4)) {
		t.Fatalf("unexpected first day %v", days[0])
	}
}

func TestPreviousWeekMondayRule(t *testing.T) {
	// Two full weeks: Mon Mar 4 .. Fri Mar 15, 2024.
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	days := TradingDays(s, time.UTC)

	// Monday Mar 11 minus 3 days lands on Friday Mar 8.
	got := PreviousWeekLastTradingDay(date(2024, time.March, 11), days)
	if !got.Equal(date(2024, time.March, 8)) {
		t.Fatalf("monday rule: got %v, want 2024-03-08", got)
	}
}

func TestPreviousWeekFridayRule(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	days := TradingDays(s, time.UTC)

	// Friday Mar 15 minus 7 days lands on Friday Mar 8.
	got := PreviousWeekLastTradingDay(date(2024, time.March, 15), days)
	if !got.Equal(date(2024, time.March, 8)) {
		t.Fatalf("friday rule: got %v, want 2024-03-08", got)
	}
}

func TestPreviousWeekMidweekRule(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	days := TradingDays(s, time.UTC)

	// Wednesday Mar 13, w=2: minus (2+3)%7 = 5 days -> Friday Mar 8.
	got := PreviousWeekLastTradingDay(date(2024, time.March, 13), days)
	if !got.Equal(date(2024, time.March, 8)) {
		t.Fatalf("midweek rule: got %v, want 2024-03-08", got)
	}
}

func TestPreviousWeekSnapsOverHoliday(t *testing.T) {
	// Week of Mar 4 with Friday Mar 8 missing (holiday): Mon-Thu only,
	// then the following full week.
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103)
	s = append(s, bdaySeries(time.UTC, 2024, time.March, 11, 104, 105, 106, 107, 108)...)
	days := TradingDays(s, time.UTC)

	// Target Friday Mar 8 has no session; snap back to Thursday Mar 7.
	got := PreviousWeekLastTradingDay(date(2024, time.March, 11), days)
	if !got.Equal(date(2024, time.March, 7)) {
		t.Fatalf("holiday snap: got %v, want 2024-03-07", got)
	}
}

func TestPreviousWeekClampsFutureBase(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104)
	days := TradingDays(s, time.UTC)

	// Base far past the series end clamps to the last trading day
	// (Friday Mar 8), then applies the Friday rule.
	got := PreviousWeekLastTradingDay(date(2024, time.June, 1), days)
	if !got.Equal(date(2024, time.March, 4)) {
		// Friday Mar 8 minus 7 is Mar 1, before the series; expect the
		// first-trading-day fallback.
		t.Fatalf("clamp: got %v, want 2024-03-04", got)
	}
}

func TestPreviousWeekFallbackToFirstDay(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 11, 100, 101, 102)
	days := TradingDays(s, time.UTC)

	// No trading day on/before the target: fall back to days[0].
	got := PreviousWeekLastTradingDay(date(2024, time.March, 11), days)
	if !got.Equal(days[0]) {
		t.Fatalf("fallback: got %v, want %v", got, days[0])
	}
}

func TestPreviousWeekNeverAfterTarget(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.January, 2, make([]float64, 60)...)
	for i := range s {
		s[i].Close = 100 + float64(i)
	}
	days := TradingDays(s, time.UTC)

	for _, base := range days {
		got := PreviousWeekLastTradingDay(base, days)
		if got.After(base) {
			t.Fatalf("result %v after base %v", got, base)
		}
		if !containsDay(days, got) {
			t.Fatalf("result %v not a trading day", got)
		}
	}
}

func TestLastTradingDayOfMonth(t *testing.T) {
	// February 2024: Feb 29 is a Thursday, a trading day.
	s := bdaySeries(time.UTC, 2024, time.February, 1, make([]float64, 40)...)
	for i := range s {
		s[i].Close = 50 + float64(i)
	}
	days := TradingDays(s, time.UTC)

	got := LastTradingDayOfMonth(date(2024, time.February, 15), days)
	if !got.Equal(date(2024, time.February, 29)) {
		t.Fatalf("got %v, want 2024-02-29", got)
	}
	if got.Before(date(2024, time.February, 1)) || got.After(date(2024, time.February, 29)) {
		t.Fatalf("result %v outside month bounds", got)
	}
}

func TestLastTradingDayOfMonthSkipsWeekend(t *testing.T) {
	// March 2024 ends on a Sunday; the last session is Friday Mar 29.
	s := bdaySeries(time.UTC, 2024, time.March, 1, make([]float64, 25)...)
	for i := range s {
		s[i].Close = 10 + float64(i)
	}
	days := TradingDays(s, time.UTC)

	got := LastTradingDayOfMonth(date(2024, time.March, 10), days)
	if !got.Equal(date(2024, time.March, 29)) {
		t.Fatalf("got %v, want 2024-03-29", got)
	}
}

func TestLastTradingDayOfMonthEmptyMonthFallsBack(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102)
	days := TradingDays(s, time.UTC)

	// January has no sessions; fall back to the first trading day.
	got := LastTradingDayOfMonth(date(2024, time.January, 15), days)
	if !got.Equal(days[0]) {
		t.Fatalf("got %v, want first trading day %v", got, days[0])
	}
}
