package analytics

import (
	"sort"
	"time"

	"ETFSheet/internal/domain/models"
	"ETFSheet/pkg/util"
)

// TradingDays derives the deduplicated, ascending calendar dates that
// have at least one observation in the series. Dates are evaluated in
// the exchange location and normalized to midnight UTC.
func TradingDays(series models.PriceSeries, loc *time.Location) []time.Time {
	days := make([]time.Time, 0, len(series))
	for _, p := range series {
		d := util.DateOnly(p.Time.In(loc))
		if n := len(days); n > 0 && days[n-1].Equal(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}

// isoWeekday maps time.Weekday to Monday=0..Sunday=6.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// PreviousWeekLastTradingDay finds the last session of the ISO week
// before base. base is clamped to the last trading day if it lies past
// the end of the series. The weekday rules target the most recent
// Friday strictly before base's week position:
//
//	Monday  -> base - 3 days (previous Friday)
//	Friday  -> base - 7 days (the Friday before)
//	other w -> base - ((w+3) mod 7) days
//
// The result is then snapped to the latest trading day on/before the
// target. With no such day, the first trading day is returned.
func PreviousWeekLastTradingDay(base time.Time, days []time.Time) time.Time {
	if len(days) == 0 {
		return util.DateOnly(base)
	}
	base = util.DateOnly(base)
	if last := days[len(days)-1]; base.After(last) {
		base = last
	}

	var target time.Time
	switch w := isoWeekday(base); w {
	case 0:
		target = base.AddDate(0, 0, -3)
	case 4:
		target = base.AddDate(0, 0, -7)
	default:
		target = base.AddDate(0, 0, -((w + 3) % 7))
	}

	if d, ok := latestOnOrBefore(days, target); ok {
		return d
	}
	return days[0]
}

// LastTradingDayOfMonth returns the last trading day within base's
// month, scanning backward from the calendar end of the month to its
// first day. A month with no sessions at all falls back to the series'
// first trading day.
func LastTradingDayOfMonth(base time.Time, days []time.Time) time.Time {
	if len(days) == 0 {
		return util.DateOnly(base)
	}
	first := util.FirstOfMonth(base)
	for d := util.LastOfMonth(base); !d.Before(first); d = d.AddDate(0, 0, -1) {
		if containsDay(days, d) {
			return d
		}
	}
	return days[0]
}

// latestOnOrBefore returns the latest trading day <= target.
func latestOnOrBefore(days []time.Time, target time.Time) (time.Time, bool) {
	// First index with days[i] > target; the answer sits just before it.
	i := sort.Search(len(days), func(i int) bool { return days[i].After(target) })
	if i == 0 {
		return time.Time{}, false
	}
	return days[i-1], true
}

func containsDay(days []time.Time, d time.Time) bool {
	i := sort.Search(len(days), func(i int) bool { return !days[i].Before(d) })
	return i < len(days) && days[i].Equal(d)
}
