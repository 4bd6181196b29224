package usecase

import (
	"context"
	"sync"
	"time"

	"ETFSheet/internal/domain/models"
	drepo "ETFSheet/internal/domain/repository"
	dservice "ETFSheet/internal/domain/service"
	applogger "ETFSheet/pkg/logger"
)

// SheetBuilder fetches price history for the whole universe and
// computes one record per instrument. The build is total: an
// instrument whose fetch or computation fails still yields a record,
// degraded to zeros, so the sheet always has exactly one row per
// universe entry in universe order.
type SheetBuilder struct {
	prices    drepo.PriceSource
	processor dservice.SeriesProcessor
	metrics   drepo.Metrics
	logger    *applogger.Logger
	workers   int
}

// NewSheetBuilder creates a SheetBuilder with a fixed worker count.
func NewSheetBuilder(
	prices drepo.PriceSource,
	processor dservice.SeriesProcessor,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	workers int,
) *SheetBuilder {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &SheetBuilder{
		prices:    prices,
		processor: processor,
		metrics:   metrics,
		logger:    logger,
		workers:   workers,
	}
}

// Build computes the sheet for the given instruments as of now.
func (b *SheetBuilder) Build(ctx context.Context, instruments []models.Instrument, now time.Time) *models.Sheet {
	start := time.Now()
	records := make([]models.ReturnRecord, len(instruments))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i] = b.buildOne(ctx, instruments[i], now)
			}
		}()
	}

	for i := range instruments {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Remaining instruments get fallback records below.
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	// Rows skipped by cancellation still need their identity filled.
	for i := range records {
		if records[i].Ticker == "" {
			records[i] = b.fallback(instruments[i], now)
		}
	}

	if b.metrics != nil {
		b.metrics.RecordLatency("sheet_build", time.Since(start).Seconds())
	}
	b.logger.Info("sheet build finished",
		applogger.Int("instruments", len(instruments)),
		applogger.Duration("took_ms", time.Since(start)),
	)

	return &models.Sheet{GeneratedAt: now, Records: records}
}

func (b *SheetBuilder) buildOne(ctx context.Context, inst models.Instrument, now time.Time) models.ReturnRecord {
	series, err := b.prices.DailyCloses(ctx, inst.Ticker)
	if err != nil {
		b.logger.Warn("price fetch failed, using fallback record",
			applogger.String("ticker", inst.Ticker),
			applogger.Error(err),
		)
		if b.metrics != nil {
			b.metrics.RecordError("price_fetch")
			b.metrics.RecordFallback(inst.Ticker)
		}
		return b.fallback(inst, now)
	}

	rec := b.processor.Process(series, now)
	rec.Ticker = inst.Ticker
	rec.Name = inst.Name
	rec.Group = inst.Group

	if b.metrics != nil {
		b.metrics.RecordProcessed(inst.Ticker)
		b.metrics.RecordLastClose(inst.Ticker, rec.LatestClose)
		if rec.LatestClose == 0 {
			b.metrics.RecordFallback(inst.Ticker)
		}
	}
	return rec
}

// fallback returns the all-zero record for an instrument whose data
// never reached the processor.
func (b *SheetBuilder) fallback(inst models.Instrument, now time.Time) models.ReturnRecord {
	rec := b.processor.Process(nil, now)
	rec.Ticker = inst.Ticker
	rec.Name = inst.Name
	rec.Group = inst.Group
	return rec
}
