package usecase

import (
	"context"
	"fmt"
	"time"

	"ETFSheet/internal/domain/models"
	drepo "ETFSheet/internal/domain/repository"
	"ETFSheet/internal/service/export"
	"ETFSheet/internal/service/sheetcache"
	applogger "ETFSheet/pkg/logger"
)

// RefresherOption configures SheetRefresher.
type RefresherOption func(*SheetRefresher)

// SheetRefresher runs one full refresh cycle: load the universe, build
// the sheet, route it to the configured backend, cache it and export
// the CSV. Downstream failures (store, publish, export) are logged and
// counted but do not fail the refresh; the computed sheet is always
// returned.
type SheetRefresher struct {
	universe drepo.UniverseSource
	builder  *SheetBuilder
	store    drepo.SnapshotStore
	pub      drepo.Publisher
	exporter drepo.SheetPublisher
	cache    *sheetcache.Cache
	metrics  drepo.Metrics
	logger   *applogger.Logger
	backend  string
	csvFile  string
	now      func() time.Time
}

// NewSheetRefresher creates a SheetRefresher. backend selects the
// persistence route: "clickhouse", "kafka" or "none".
func NewSheetRefresher(
	universe drepo.UniverseSource,
	builder *SheetBuilder,
	backend string,
	opts ...RefresherOption,
) *SheetRefresher {
	r := &SheetRefresher{
		universe: universe,
		builder:  builder,
		backend:  backend,
		logger:   applogger.Nop(),
		csvFile:  "etf_data_with_returns.csv",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithSnapshotStore routes sheets to a snapshot store.
func WithSnapshotStore(store drepo.SnapshotStore) RefresherOption {
	return func(r *SheetRefresher) {
		r.store = store
	}
}

// WithPublisher routes sheets to a message publisher.
func WithPublisher(pub drepo.Publisher) RefresherOption {
	return func(r *SheetRefresher) {
		r.pub = pub
	}
}

// WithExporter pushes the rendered CSV to an external destination.
func WithExporter(exporter drepo.SheetPublisher, filename string) RefresherOption {
	return func(r *SheetRefresher) {
		r.exporter = exporter
		if filename != "" {
			r.csvFile = filename
		}
	}
}

// WithSheetCache caches the latest sheet.
func WithSheetCache(c *sheetcache.Cache) RefresherOption {
	return func(r *SheetRefresher) {
		r.cache = c
	}
}

// WithMetrics records refresh metrics.
func WithMetrics(m drepo.Metrics) RefresherOption {
	return func(r *SheetRefresher) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) RefresherOption {
	return func(r *SheetRefresher) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RefresherOption {
	return func(r *SheetRefresher) {
		if now != nil {
			r.now = now
		}
	}
}

// Refresh runs one refresh cycle and returns the computed sheet.
func (r *SheetRefresher) Refresh(ctx context.Context) (*models.Sheet, error) {
	start := time.Now()

	instruments, err := r.universe.Instruments(ctx)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("universe_load")
		}
		return nil, fmt.Errorf("load universe: %w", err)
	}

	sheet := r.builder.Build(ctx, instruments, r.now())

	r.route(ctx, sheet)

	if r.cache != nil {
		if err := r.cache.Put(ctx, sheet); err != nil {
			r.logger.Warn("sheet cache write failed", applogger.Error(err))
			if r.metrics != nil {
				r.metrics.RecordError("cache_write")
			}
		}
	}

	r.export(ctx, sheet)

	if r.metrics != nil {
		r.metrics.RecordLatency("sheet_refresh", time.Since(start).Seconds())
	}
	r.logger.Info("sheet refresh finished",
		applogger.Int("records", len(sheet.Records)),
		applogger.String("backend", r.backend),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return sheet, nil
}

// Latest returns the most recent sheet, preferring the cache.
func (r *SheetRefresher) Latest(ctx context.Context) (*models.Sheet, error) {
	if r.cache != nil {
		sheet, hit, err := r.cache.Latest(ctx)
		if err != nil {
			r.logger.Warn("sheet cache read failed", applogger.Error(err))
		} else if hit {
			return sheet, nil
		}
	}
	return r.Refresh(ctx)
}

func (r *SheetRefresher) route(ctx context.Context, sheet *models.Sheet) {
	var err error
	switch r.backend {
	case "clickhouse":
		if r.store != nil {
			err = r.store.StoreSheet(ctx, sheet)
		}
	case "kafka":
		if r.pub != nil {
			err = r.pub.PublishSheet(ctx, sheet)
		}
	case "none", "":
	default:
		err = fmt.Errorf("unknown backend: %s", r.backend)
	}
	if err != nil {
		r.logger.Error("sheet backend write failed",
			applogger.String("backend", r.backend),
			applogger.Error(err),
		)
		if r.metrics != nil {
			r.metrics.RecordError("backend_write")
		}
	}
}

func (r *SheetRefresher) export(ctx context.Context, sheet *models.Sheet) {
	if r.exporter == nil {
		return
	}
	content, err := export.SheetCSV(sheet)
	if err != nil {
		r.logger.Error("csv render failed", applogger.Error(err))
		if r.metrics != nil {
			r.metrics.RecordError("csv_render")
		}
		return
	}
	msg := fmt.Sprintf("Update ETF data %s", sheet.GeneratedAt.Format(models.DateFormat))
	if err := r.exporter.Publish(ctx, r.csvFile, content, msg); err != nil {
		r.logger.Error("csv publish failed", applogger.Error(err))
		if r.metrics != nil {
			r.metrics.RecordError("csv_publish")
		}
	}
}

// Close closes backend resources.
func (r *SheetRefresher) Close() {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}
