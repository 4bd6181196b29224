package models

import "time"

// DateFormat is the wire format for the base date fields.
const DateFormat = "2006-01-02"

// ReturnRecord is the computed return/risk row for one instrument.
// Every numeric field is either a finite computed value or 0 (the
// fallback policy: insufficient data, missing reference observation
// and computation faults all degrade to zeros, never to NaN/Inf).
type ReturnRecord struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
	Group  string `json:"group,omitempty"`

	LatestClose   float64 `json:"close"`
	DailyReturn   float64 `json:"daily_return"`
	WeeklyReturn  float64 `json:"weekly_return"`
	MonthlyReturn float64 `json:"monthly_return"`
	YTDReturn     float64 `json:"ytd_return"`
	Days22Return  float64 `json:"days_22_return"`
	Days132Return float64 `json:"days_132_return"`
	Days264Return float64 `json:"days_264_return"`

	UltraShortVol float64 `json:"ultra_short_vol"`
	ShortTermVol  float64 `json:"short_term_vol"`
	LongTermVol   float64 `json:"long_term_vol"`
	MDD           float64 `json:"mdd"`
	High52WDD     float64 `json:"high_52w_drawdown"`
	SharpeRatio   float64 `json:"sharpe_ratio"`

	BaseDate        string `json:"base_date"`
	WeeklyBaseDate  string `json:"weekly_base_date"`
	MonthlyBaseDate string `json:"monthly_base_date"`
}

// Sheet is one full sheet refresh: one record per universe instrument,
// in universe order.
type Sheet struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Records     []ReturnRecord `json:"records"`
}

// Record returns the record for a ticker, if present.
func (s *Sheet) Record(ticker string) (ReturnRecord, bool) {
	for _, r := range s.Records {
		if r.Ticker == ticker {
			return r, true
		}
	}
	return ReturnRecord{}, false
}
