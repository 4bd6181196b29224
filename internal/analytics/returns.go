package analytics

import (
	"time"

	"ETFSheet/internal/domain/models"
	"ETFSheet/pkg/util"
)

// Calendar-day lookback offsets for the fixed-horizon returns. The
// offsets are calendar days, not trading days; the weekly locator is
// reused only to snap the shifted date onto a real session.
const (
	lookback22d  = 22
	lookback132d = 132
	lookback264d = 264
)

// Returns holds the percentage returns against each reference session
// plus the resolved reference dates.
type Returns struct {
	LatestClose   float64
	DailyReturn   float64
	WeeklyReturn  float64
	MonthlyReturn float64
	YTDReturn     float64
	Days22Return  float64
	Days132Return float64
	Days264Return float64

	BaseDate        time.Time
	WeeklyBaseDate  time.Time
	MonthlyBaseDate time.Time
}

// ComputeReturns resolves every reference session relative to baseDate
// and computes the percentage return of the latest close against each
// reference close. A reference date with no observation substitutes
// the latest close itself as base, which reads as a 0% return rather
// than an error.
func ComputeReturns(series models.PriceSeries, loc *time.Location, days []time.Time, baseDate time.Time, latest, previous int) Returns {
	latestClose := series[latest].Close
	previousClose := latestClose
	if previous >= 0 {
		previousClose = series[previous].Close
	}

	weeklyBaseDate := PreviousWeekLastTradingDay(baseDate, days)
	weeklyBaseClose := closeOn(series, loc, weeklyBaseDate, latestClose)

	lastOfPrevMonth := util.FirstOfMonth(baseDate).AddDate(0, 0, -1)
	monthlyBaseDate := LastTradingDayOfMonth(lastOfPrevMonth, days)
	monthlyBaseClose := closeOn(series, loc, monthlyBaseDate, latestClose)

	prevYearEnd := time.Date(baseDate.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	ytdBaseDate := LastTradingDayOfMonth(prevYearEnd, days)
	ytdBaseClose := closeOn(series, loc, ytdBaseDate, latestClose)

	days22Close := lookbackClose(series, loc, days, baseDate, lookback22d, latestClose)
	days132Close := lookbackClose(series, loc, days, baseDate, lookback132d, latestClose)
	days264Close := lookbackClose(series, loc, days, baseDate, lookback264d, latestClose)

	return Returns{
		LatestClose:   latestClose,
		DailyReturn:   pctReturn(latestClose, previousClose),
		WeeklyReturn:  pctReturn(latestClose, weeklyBaseClose),
		MonthlyReturn: pctReturn(latestClose, monthlyBaseClose),
		YTDReturn:     pctReturn(latestClose, ytdBaseClose),
		Days22Return:  pctReturn(latestClose, days22Close),
		Days132Return: pctReturn(latestClose, days132Close),
		Days264Return: pctReturn(latestClose, days264Close),

		BaseDate:        baseDate,
		WeeklyBaseDate:  weeklyBaseDate,
		MonthlyBaseDate: monthlyBaseDate,
	}
}

// pctReturn is ((current - base) / base) * 100 with a zero-base guard.
func pctReturn(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base * 100
}

// lookbackClose shifts baseDate back by a calendar-day offset, snaps
// onto a session and resolves its close.
func lookbackClose(series models.PriceSeries, loc *time.Location, days []time.Time, baseDate time.Time, offset int, fallback float64) float64 {
	ref := PreviousWeekLastTradingDay(baseDate.AddDate(0, 0, -offset), days)
	return closeOn(series, loc, ref, fallback)
}

// closeOn returns the last close recorded on the given calendar date,
// or fallback when the date has no observation.
func closeOn(series models.PriceSeries, loc *time.Location, date time.Time, fallback float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		d := util.DateOnly(series[i].Time.In(loc))
		if d.Equal(date) {
			return series[i].Close
		}
		if d.Before(date) {
			break
		}
	}
	return fallback
}
