package analytics

import (
	"reflect"
	"testing"
	"time"

	"ETFSheet/internal/domain/models"
)

func newTestProcessor() *Processor {
	return NewProcessor(time.UTC, 5, nil)
}

func TestProcessInsufficientData(t *testing.T) {
	p := newTestProcessor()
	now := time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC)

	for _, series := range []models.PriceSeries{nil, {}, bdaySeries(time.UTC, 2024, time.March, 4, 100)} {
		rec := p.Process(series, now)
		if rec.LatestClose != 0 || rec.DailyReturn != 0 || rec.MDD != 0 || rec.SharpeRatio != 0 {
			t.Fatalf("expected all-zero record, got %+v", rec)
		}
		if rec.BaseDate != "2024-03-11" || rec.WeeklyBaseDate != "2024-03-11" || rec.MonthlyBaseDate != "2024-03-11" {
			t.Fatalf("fallback dates must be now's date, got %+v", rec)
		}
	}
}

func TestProcessIdempotent(t *testing.T) {
	p := newTestProcessor()
	s := bdaySeries(time.UTC, 2024, time.January, 2, make([]float64, 90)...)
	for i := range s {
		s[i].Close = 100 + float64(i%7)
	}
	now := s[len(s)-1].Time.Add(3 * time.Hour)

	a := p.Process(s, now)
	b := p.Process(s, now)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("process is not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestProcessRisingSeriesScenario(t *testing.T) {
	// 300 consecutive business-day closes rising 100 -> 200.
	s := bdaySeries(time.UTC, 2023, time.January, 2, make([]float64, 300)...)
	for i := range s {
		s[i].Close = 100 + float64(i)*100/299
	}
	p := newTestProcessor()
	now := s[len(s)-1].Time.Add(3 * time.Hour)

	rec := p.Process(s, now)
	if rec.MDD != 0 {
		t.Errorf("MDD = %v, want 0", rec.MDD)
	}
	if rec.High52WDD != 0 {
		t.Errorf("52w drawdown = %v, want 0", rec.High52WDD)
	}
	if rec.DailyReturn <= 0 {
		t.Errorf("daily return = %v, want > 0", rec.DailyReturn)
	}
	if rec.YTDReturn <= 0 {
		t.Errorf("ytd return = %v, want > 0", rec.YTDReturn)
	}
}

func TestProcessDrawdownScenario(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 90, 80, 100)
	p := newTestProcessor()
	now := time.Date(2024, 3, 7, 17, 0, 0, 0, time.UTC)

	rec := p.Process(s, now)
	if rec.MDD != -20 {
		t.Errorf("MDD = %v, want -20", rec.MDD)
	}
	if rec.DailyReturn != 25 {
		t.Errorf("daily return = %v, want 25", rec.DailyReturn)
	}
}

func TestProcessMondayPreOpenUsesLastTradingDay(t *testing.T) {
	s := bdaySeries(time.UTC, 2024, time.March, 4, 100, 101, 102, 103, 104)
	p := newTestProcessor()
	// Monday 08:00, before the open.
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)

	rec := p.Process(s, now)
	if rec.BaseDate != "2024-03-08" {
		t.Fatalf("base date = %s, want the series' last trading day 2024-03-08", rec.BaseDate)
	}
}

func TestProcessAllFieldsFinite(t *testing.T) {
	// Zero prices inside the series exercise every division guard.
	s := bdaySeries(time.UTC, 2024, time.March, 4, 0, 0, 100, 0, 50)
	p := newTestProcessor()
	now := s[len(s)-1].Time.Add(3 * time.Hour)

	rec := p.Process(s, now)
	for _, v := range []float64{
		rec.LatestClose, rec.DailyReturn, rec.WeeklyReturn, rec.MonthlyReturn,
		rec.YTDReturn, rec.Days22Return, rec.Days132Return, rec.Days264Return,
		rec.UltraShortVol, rec.ShortTermVol, rec.LongTermVol, rec.MDD,
		rec.High52WDD, rec.SharpeRatio,
	} {
		if v != v || v > 1e308 || v < -1e308 {
			t.Fatalf("non-finite field in %+v", rec)
		}
	}
}

func TestProcessRecoversFromPanic(t *testing.T) {
	// A nil-location processor is fine, but a malformed series that
	// trips an internal invariant must still produce a record. Force a
	// panic through an impossible selector state by truncating the
	// series behind a consistent-looking header.
	p := newTestProcessor()
	now := time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC)

	// Two points with identical timestamps dedupe to one trading day;
	// processing must not panic and must stay total.
	ts := time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)
	s := models.PriceSeries{{Time: ts, Close: 100}, {Time: ts, Close: 101}}
	rec := p.Process(s, now)
	if rec.BaseDate == "" {
		t.Fatalf("expected a dated record, got %+v", rec)
	}
}
