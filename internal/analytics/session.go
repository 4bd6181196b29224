package analytics

import (
	"time"

	"ETFSheet/internal/domain/models"
	"ETFSheet/pkg/util"
)

// Exchange session boundaries, minutes after local midnight.
const (
	marketOpenMinute  = 9*60 + 30
	marketCloseMinute = 16 * 60
)

// SelectSession decides which observations count as "latest" and
// "previous" given the wall clock. A session's close is only
// authoritative after 16:00 exchange time; while today's session is
// still in progress the most recent observation is treated as
// not-yet-final and the comparison shifts back one session. Requires
// len(series) >= 2.
func SelectSession(now time.Time, series models.PriceSeries, loc *time.Location) (latest, previous int, baseDate time.Time) {
	nowLocal := now.In(loc)
	nowDate := util.DateOnly(nowLocal)
	lastObsDate := util.DateOnly(series[len(series)-1].Time.In(loc))

	lastTradingDay := lastObsDate
	if nowDate.Before(lastObsDate) {
		lastTradingDay = nowDate
	}

	minute := nowLocal.Hour()*60 + nowLocal.Minute()
	marketOpenToday := lastTradingDay.Equal(nowDate) && minute >= marketOpenMinute

	latest, previous = len(series)-1, len(series)-2
	if marketOpenToday && minute < marketCloseMinute && len(series) > 2 {
		latest, previous = len(series)-2, len(series)-3
	}

	baseDate = util.DateOnly(series[latest].Time.In(loc))
	return latest, previous, baseDate
}
