package repository

import (
	"context"
	"time"

	"ETFSheet/internal/domain/models"
)

// PriceSource fetches the daily close history for one instrument.
type PriceSource interface {
	DailyCloses(ctx context.Context, ticker string) (models.PriceSeries, error)
}

// UniverseSource loads the instrument universe the sheet covers.
type UniverseSource interface {
	Instruments(ctx context.Context) ([]models.Instrument, error)
}

// SnapshotStore persists computed sheets for history queries.
type SnapshotStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreSheet(ctx context.Context, sheet *models.Sheet) error
	LatestRecords(ctx context.Context, asOf time.Time, limit int) ([]models.ReturnRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher hands computed records to downstream consumers.
type Publisher interface {
	PublishSheet(ctx context.Context, sheet *models.Sheet) error
	Close() error
}

// SheetPublisher exports a rendered sheet to an external destination
// (e.g. a repository file).
type SheetPublisher interface {
	Publish(ctx context.Context, filename string, content []byte, message string) error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordProcessed(ticker string)
	RecordFallback(ticker string)
	RecordError(kind string)
	RecordLastClose(ticker string, close float64)
	RecordLatency(op string, seconds float64)
}
