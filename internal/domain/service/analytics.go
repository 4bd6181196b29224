package service

import (
	"time"

	"ETFSheet/internal/domain/models"
)

// SeriesProcessor computes one instrument's return/risk record from
// its price history. Implementations must be total: any input yields a
// record, degraded to zeros when it cannot be computed.
type SeriesProcessor interface {
	Process(series models.PriceSeries, now time.Time) models.ReturnRecord
}
