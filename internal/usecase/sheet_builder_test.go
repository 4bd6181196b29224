package usecase

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"ETFSheet/internal/analytics"
	"ETFSheet/internal/domain/models"
	applogger "ETFSheet/pkg/logger"
)

type fakePriceSource struct {
	mu     sync.Mutex
	series map[string]models.PriceSeries
	errs   map[string]error
	calls  []string
}

func (f *fakePriceSource) DailyCloses(_ context.Context, ticker string) (models.PriceSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.mu.Unlock()
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	return f.series[ticker], nil
}

func builderSeries(start float64, n int) models.PriceSeries {
	s := make(models.PriceSeries, 0, n)
	d := time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		s = append(s, models.PricePoint{Time: d, Close: start + float64(i)})
		d = d.AddDate(0, 0, 1)
	}
	return s
}

func TestBuildOneRecordPerInstrumentInOrder(t *testing.T) {
	src := &fakePriceSource{
		series: map[string]models.PriceSeries{
			"SPY": builderSeries(100, 30),
			"QQQ": builderSeries(200, 30),
			"TLT": builderSeries(90, 30),
		},
	}
	proc := analytics.NewProcessor(time.UTC, 5, applogger.Nop())
	b := NewSheetBuilder(src, proc, nil, applogger.Nop(), 2)

	instruments := []models.Instrument{
		{Ticker: "TLT", Name: "Treasury", Group: "Bond"},
		{Ticker: "SPY", Name: "S&P 500", Group: "US Equity"},
		{Ticker: "QQQ", Name: "Nasdaq 100", Group: "US Equity"},
	}
	now := time.Date(2024, 2, 20, 18, 0, 0, 0, time.UTC)
	sheet := b.Build(context.Background(), instruments, now)

	if len(sheet.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(sheet.Records))
	}
	for i, inst := range instruments {
		if sheet.Records[i].Ticker != inst.Ticker {
			t.Fatalf("record %d: expected %s, got %s", i, inst.Ticker, sheet.Records[i].Ticker)
		}
		if sheet.Records[i].Group != inst.Group {
			t.Fatalf("record %d: group not carried over", i)
		}
	}
	if sheet.Records[1].LatestClose == 0 {
		t.Fatal("expected computed close for SPY")
	}
	if !sheet.GeneratedAt.Equal(now) {
		t.Fatalf("unexpected GeneratedAt %v", sheet.GeneratedAt)
	}
}

func TestBuildFetchFailureDegradesToZeroRecord(t *testing.T) {
	src := &fakePriceSource{
		series: map[string]models.PriceSeries{
			"SPY": builderSeries(100, 30),
		},
		errs: map[string]error{
			"BAD": fmt.Errorf("upstream unavailable"),
		},
	}
	proc := analytics.NewProcessor(time.UTC, 5, applogger.Nop())
	b := NewSheetBuilder(src, proc, nil, applogger.Nop(), 1)

	now := time.Date(2024, 2, 20, 18, 0, 0, 0, time.UTC)
	sheet := b.Build(context.Background(), []models.Instrument{
		{Ticker: "BAD", Name: "Broken"},
		{Ticker: "SPY", Name: "S&P 500"},
	}, now)

	if len(sheet.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sheet.Records))
	}
	bad := sheet.Records[0]
	if bad.Ticker != "BAD" {
		t.Fatalf("unexpected ticker %q", bad.Ticker)
	}
	if bad.LatestClose != 0 || bad.DailyReturn != 0 || bad.SharpeRatio != 0 {
		t.Fatalf("expected zero record, got %+v", bad)
	}
	if bad.BaseDate != "2024-02-20" {
		t.Fatalf("expected fallback dated today, got %q", bad.BaseDate)
	}
	if sheet.Records[1].LatestClose == 0 {
		t.Fatal("healthy instrument should still compute")
	}
}

func TestBuildShortSeriesDegradesToZeroRecord(t *testing.T) {
	src := &fakePriceSource{
		series: map[string]models.PriceSeries{
			"NEW": builderSeries(50, 1),
		},
	}
	proc := analytics.NewProcessor(time.UTC, 5, applogger.Nop())
	b := NewSheetBuilder(src, proc, nil, applogger.Nop(), 1)

	now := time.Date(2024, 2, 20, 18, 0, 0, 0, time.UTC)
	sheet := b.Build(context.Background(), []models.Instrument{{Ticker: "NEW"}}, now)

	rec := sheet.Records[0]
	if rec.LatestClose != 0 {
		t.Fatalf("expected zero close for one-observation series, got %v", rec.LatestClose)
	}
	if rec.BaseDate != "2024-02-20" || rec.WeeklyBaseDate != "2024-02-20" || rec.MonthlyBaseDate != "2024-02-20" {
		t.Fatalf("expected all base dates set to today, got %+v", rec)
	}
}

func TestBuildIsDeterministicAcrossWorkerCounts(t *testing.T) {
	series := map[string]models.PriceSeries{
		"SPY": builderSeries(100, 60),
		"QQQ": builderSeries(200, 60),
		"TLT": builderSeries(90, 60),
		"GLD": builderSeries(150, 60),
	}
	instruments := []models.Instrument{
		{Ticker: "SPY"}, {Ticker: "QQQ"}, {Ticker: "TLT"}, {Ticker: "GLD"},
	}
	now := time.Date(2024, 3, 28, 18, 0, 0, 0, time.UTC)
	proc := analytics.NewProcessor(time.UTC, 5, applogger.Nop())

	var sheets []*models.Sheet
	for _, workers := range []int{1, 2, 8} {
		b := NewSheetBuilder(&fakePriceSource{series: series}, proc, nil, applogger.Nop(), workers)
		sheets = append(sheets, b.Build(context.Background(), instruments, now))
	}

	for i := 1; i < len(sheets); i++ {
		if !reflect.DeepEqual(sheets[0].Records, sheets[i].Records) {
			t.Fatalf("worker count changed the result:\n%+v\nvs\n%+v", sheets[0].Records, sheets[i].Records)
		}
	}
}

func TestBuildEmptyUniverse(t *testing.T) {
	proc := analytics.NewProcessor(time.UTC, 5, applogger.Nop())
	b := NewSheetBuilder(&fakePriceSource{}, proc, nil, applogger.Nop(), 4)

	sheet := b.Build(context.Background(), nil, time.Date(2024, 2, 20, 18, 0, 0, 0, time.UTC))
	if len(sheet.Records) != 0 {
		t.Fatalf("expected empty sheet, got %d records", len(sheet.Records))
	}
}
