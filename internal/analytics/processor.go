package analytics

import (
	"math"
	"time"

	"ETFSheet/internal/domain/models"
	"ETFSheet/pkg/util"
	applogger "ETFSheet/pkg/logger"
)

// Processor turns one instrument's price series into a ReturnRecord.
// Pure over its inputs: no shared state, safe to call from concurrent
// workers.
type Processor struct {
	loc          *time.Location
	riskFreeRate float64
	logger       *applogger.Logger
}

// NewProcessor creates a Processor. loc is the exchange timezone used
// to interpret observation timestamps and the wall clock; riskFreeRate
// is in percentage units.
func NewProcessor(loc *time.Location, riskFreeRate float64, logger *applogger.Logger) *Processor {
	if loc == nil {
		loc = time.UTC
	}
	return &Processor{loc: loc, riskFreeRate: riskFreeRate, logger: logger}
}

// Process computes the full return/risk record for one series.
//
// Failure containment: a series shorter than 2 observations, or any
// panic raised while computing, degrades to an all-zero record dated
// `now`. Process never fails; a batch of N instruments always yields
// N records.
func (p *Processor) Process(series models.PriceSeries, now time.Time) (rec models.ReturnRecord) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Warn("series processing recovered",
					applogger.Any("panic", r),
					applogger.Int("observations", len(series)),
				)
			}
			rec = p.fallbackRecord(now)
		}
	}()

	if len(series) < 2 {
		return p.fallbackRecord(now)
	}

	days := TradingDays(series, p.loc)
	latest, previous, baseDate := SelectSession(now, series, p.loc)
	ret := ComputeReturns(series, p.loc, days, baseDate, latest, previous)

	closes := series.Closes()
	ultraShort, shortTerm, longTerm, mdd := VolatilityAndMDD(closes)
	high52dd := DrawdownFrom52WeekHigh(closes)
	sharpe := SharpeRatio(ret.Days264Return, longTerm, p.riskFreeRate)

	return models.ReturnRecord{
		LatestClose:   finite(ret.LatestClose),
		DailyReturn:   finite(ret.DailyReturn),
		WeeklyReturn:  finite(ret.WeeklyReturn),
		MonthlyReturn: finite(ret.MonthlyReturn),
		YTDReturn:     finite(ret.YTDReturn),
		Days22Return:  finite(ret.Days22Return),
		Days132Return: finite(ret.Days132Return),
		Days264Return: finite(ret.Days264Return),

		UltraShortVol: finite(ultraShort),
		ShortTermVol:  finite(shortTerm),
		LongTermVol:   finite(longTerm),
		MDD:           finite(mdd),
		High52WDD:     finite(high52dd),
		SharpeRatio:   finite(sharpe),

		BaseDate:        ret.BaseDate.Format(models.DateFormat),
		WeeklyBaseDate:  ret.WeeklyBaseDate.Format(models.DateFormat),
		MonthlyBaseDate: ret.MonthlyBaseDate.Format(models.DateFormat),
	}
}

// fallbackRecord is the all-zero record with every date field set to
// now's calendar date.
func (p *Processor) fallbackRecord(now time.Time) models.ReturnRecord {
	d := util.DateOnly(now.In(p.loc)).Format(models.DateFormat)
	return models.ReturnRecord{
		BaseDate:        d,
		WeeklyBaseDate:  d,
		MonthlyBaseDate: d,
	}
}

// finite clamps NaN/Inf to the 0 sentinel. Every numeric record field
// is either a finite value or 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
