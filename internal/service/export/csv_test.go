package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"ETFSheet/internal/domain/models"
)

func TestSheetCSVRendersAllColumns(t *testing.T) {
	sheet := &models.Sheet{
		GeneratedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		Records: []models.ReturnRecord{
			{
				Ticker: "SPY", Name: "SPDR S&P 500", Group: "US Equity",
				LatestClose: 512.345, DailyReturn: 1.234, WeeklyReturn: -0.5,
				MonthlyReturn: 2.5, YTDReturn: 8.125, Days22Return: 3,
				Days132Return: 10, Days264Return: 22.5,
				UltraShortVol: 11.1, ShortTermVol: 12.2, LongTermVol: 13.3,
				MDD: -8.75, High52WDD: -2.125, SharpeRatio: 0.875,
				BaseDate: "2024-03-15", WeeklyBaseDate: "2024-03-08", MonthlyBaseDate: "2024-02-29",
			},
			{
				Ticker: "TLT", Name: "iShares 20+ Year Treasury", Group: "Bond",
				BaseDate: "2024-03-15", WeeklyBaseDate: "2024-03-08", MonthlyBaseDate: "2024-02-29",
			},
		},
	}

	out, err := SheetCSV(sheet)
	if err != nil {
		t.Fatalf("SheetCSV: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(Header) {
		t.Fatalf("expected %d columns, got %d", len(Header), len(rows[0]))
	}
	if rows[0][0] != "ETF Ticker" || rows[0][16] != "Sharpe Ratio" {
		t.Fatalf("unexpected header %v", rows[0])
	}

	spy := rows[1]
	if spy[0] != "SPY" {
		t.Fatalf("unexpected ticker %q", spy[0])
	}
	if spy[3] != "512.35" {
		t.Fatalf("close not rounded to two decimals: %q", spy[3])
	}
	if spy[4] != "1.23" {
		t.Fatalf("daily return not rounded: %q", spy[4])
	}
	if spy[14] != "-8.75" {
		t.Fatalf("unexpected mdd %q", spy[14])
	}
	if spy[17] != "2024-03-15" || spy[19] != "2024-02-29" {
		t.Fatalf("unexpected base dates %v", spy[17:])
	}

	tlt := rows[2]
	if tlt[4] != "0.00" {
		t.Fatalf("zero fallback should render as 0.00, got %q", tlt[4])
	}
}

func TestSheetCSVNilSheet(t *testing.T) {
	if _, err := SheetCSV(nil); err == nil {
		t.Fatal("expected error for nil sheet")
	}
}

func TestSheetCSVEmptySheet(t *testing.T) {
	out, err := SheetCSV(&models.Sheet{})
	if err != nil {
		t.Fatalf("SheetCSV: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
