package models

import "time"

// PricePoint is a single daily close observation.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered daily close history for one instrument.
// Timestamps are strictly increasing, one observation per trading session.
// The analytics core only reads it; ownership stays with the caller.
type PriceSeries []PricePoint

// Closes extracts the close column.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent observation. Zero value if empty.
func (s PriceSeries) Last() PricePoint {
	if len(s) == 0 {
		return PricePoint{}
	}
	return s[len(s)-1]
}

// Instrument identifies one row of the sheet universe.
type Instrument struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Group  string `json:"group"`
}
