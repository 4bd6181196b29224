package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ETFSheet/internal/analytics"
	"ETFSheet/internal/domain/models"
	"ETFSheet/internal/usecase"
	applogger "ETFSheet/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubUniverse struct {
	instruments []models.Instrument
}

func (s *stubUniverse) Instruments(context.Context) ([]models.Instrument, error) {
	return s.instruments, nil
}

type stubPrices struct {
	series map[string]models.PriceSeries
}

func (s *stubPrices) DailyCloses(_ context.Context, ticker string) (models.PriceSeries, error) {
	return s.series[ticker], nil
}

func testSeries(start float64, n int) models.PriceSeries {
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

func newTestHandler(t *testing.T) *SheetEchoHandler {
	t.Helper()
	prices := &stubPrices{series: map[string]models.PriceSeries{
		"SPY": testSeries(100, 30),
		"TLT": testSeries(90, 30),
	}}
	proc := analytics.NewProcessor(time.UTC, 5, applogger.Nop())
	builder := usecase.NewSheetBuilder(prices, proc, nil, applogger.Nop(), 2)
	uni := &stubUniverse{instruments: []models.Instrument{
		{Ticker: "SPY", Name: "S&P 500", Group: "US Equity"},
		{Ticker: "TLT", Name: "Treasury", Group: "Bond"},
	}}
	now := func() time.Time { return time.Date(2024, 2, 20, 18, 0, 0, 0, time.UTC) }
	refresher := usecase.NewSheetRefresher(uni, builder, "none", usecase.WithClock(now))
	return NewSheetEchoHandler(applogger.Nop(), refresher, nil)
}

func doRequest(h *SheetEchoHandler, method, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSheetEndpointReturnsAllRecords(t *testing.T) {
	rec := doRequest(newTestHandler(t), http.MethodGet, "/api/sheet")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.Sheet `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp.Data.Records))
	}
	if resp.Data.Records[0].Ticker != "SPY" {
		t.Fatalf("unexpected first record %+v", resp.Data.Records[0])
	}
}

func TestSheetEndpointGroupFilter(t *testing.T) {
	rec := doRequest(newTestHandler(t), http.MethodGet, "/api/sheet?group=Bond")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp struct {
		Data models.Sheet `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Records) != 1 || resp.Data.Records[0].Ticker != "TLT" {
		t.Fatalf("unexpected filtered records %+v", resp.Data.Records)
	}
}

func TestSheetEndpointCSVFormat(t *testing.T) {
	rec := doRequest(newTestHandler(t), http.MethodGet, "/api/sheet?format=csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "ETF Ticker,ETF Name,Group,Close") {
		t.Fatalf("unexpected csv header: %q", body[:60])
	}
	if !strings.Contains(body, "SPY") {
		t.Fatal("csv missing records")
	}
}

func TestRecordEndpoint(t *testing.T) {
	rec := doRequest(newTestHandler(t), http.MethodGet, "/api/sheet/TLT")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.ReturnRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Ticker != "TLT" || resp.Data.Group != "Bond" {
		t.Fatalf("unexpected record %+v", resp.Data)
	}
}

func TestRecordEndpointUnknownTicker(t *testing.T) {
	rec := doRequest(newTestHandler(t), http.MethodGet, "/api/sheet/NOPE")
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Fatalf("expected embedded 404 status, got %d", resp.Status)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	rec := doRequest(newTestHandler(t), http.MethodPost, "/api/sheet/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHistoryEndpointWithoutStore(t *testing.T) {
	rec := doRequest(newTestHandler(t), http.MethodGet, "/api/history")
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected embedded 400 status, got %d", resp.Status)
	}
}
