package di

import (
	"context"
	"fmt"
	"time"

	"ETFSheet/internal/domain/repository"
	dservice "ETFSheet/internal/domain/service"
	"ETFSheet/internal/analytics"
	"ETFSheet/internal/handler/api"
	internalrepo "ETFSheet/internal/repository"
	"ETFSheet/internal/service/github"
	"ETFSheet/internal/service/sheetcache"
	"ETFSheet/internal/service/universe"
	"ETFSheet/internal/service/yahoo"
	"ETFSheet/internal/usecase"
	pkgcache "ETFSheet/pkg/cache"
	pkgch "ETFSheet/pkg/clickhouse"
	"ETFSheet/pkg/config"
	xhttp "ETFSheet/pkg/http"
	pkgkafka "ETFSheet/pkg/kafka"
	applogger "ETFSheet/pkg/logger"
	"ETFSheet/pkg/metrics"
	"ETFSheet/pkg/server"
)

const snapshotTable = "sheet_records"

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideUniverse creates the CSV universe loader.
func ProvideUniverse(cfg *config.Config) repository.UniverseSource {
	return universe.NewFileLoader(cfg.Sheet.InstrumentsFile)
}

// ProvidePriceSource creates the Yahoo chart API client.
func ProvidePriceSource(cfg *config.Config, l *applogger.Logger) repository.PriceSource {
	return yahoo.NewClient(
		yahoo.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Yahoo.Timeout))),
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL+"/v8/finance/chart"),
		yahoo.WithUserAgent(cfg.Yahoo.UserAgent),
		yahoo.WithLookbackDays(cfg.Sheet.LookbackDays),
		yahoo.WithLogger(l),
	)
}

// ProvideProcessor creates the series processor bound to the exchange
// timezone.
func ProvideProcessor(cfg *config.Config, l *applogger.Logger) (dservice.SeriesProcessor, error) {
	loc, err := time.LoadLocation(cfg.Sheet.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Sheet.Timezone, err)
	}
	return analytics.NewProcessor(loc, cfg.Sheet.RiskFreeRate, l), nil
}

// ProvideSheetBuilder creates the worker-pool sheet builder.
func ProvideSheetBuilder(
	prices repository.PriceSource,
	processor dservice.SeriesProcessor,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.SheetBuilder {
	return usecase.NewSheetBuilder(prices, processor, m, l, cfg.Sheet.Workers)
}

// ProvideClickHouseClient creates a ClickHouse client when the
// clickhouse backend is selected; returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database, snapshotTable)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore creates ClickHouse snapshot storage; nil without
// the clickhouse backend.
func ProvideSnapshotStore(chClient *pkgch.Client, cfg *config.Config) repository.SnapshotStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseSnapshotStore(chClient.DB(), cfg.ClickHouse.Database+"."+snapshotTable)
}

// ProvideKafkaProducer creates a Kafka producer when the kafka backend
// is selected; returns nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSheetPublisher creates the Kafka sheet publisher; nil without
// the kafka backend.
func ProvideSheetPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSheetPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSheetCache creates the latest-sheet cache. With Redis enabled
// it layers an in-process cache over Redis; otherwise it is memory
// only. A Redis connection failure degrades to memory with a warning.
func ProvideSheetCache(cfg *config.Config, l *applogger.Logger) *sheetcache.Cache {
	var svc pkgcache.Service = pkgcache.NewMemoryCache()
	if cfg.Cache.Enabled {
		redisCache, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Host),
			pkgcache.WithRedisPort(cfg.Cache.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Password),
			pkgcache.WithRedisDB(cfg.Cache.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Prefix),
		)
		if err != nil {
			l.Warn("redis unavailable, using memory cache", applogger.Error(err))
		} else {
			svc = pkgcache.NewLayeredCache(redisCache)
		}
	}
	return sheetcache.New(svc, cfg.Cache.SheetTTL)
}

// ProvideCSVExporter creates the GitHub contents publisher; nil when
// disabled.
func ProvideCSVExporter(cfg *config.Config, l *applogger.Logger) repository.SheetPublisher {
	if !cfg.GitHub.Enabled {
		return nil
	}
	return github.NewPublisher(
		cfg.GitHub.RepoOwner,
		cfg.GitHub.RepoName,
		cfg.GitHub.Token,
		github.WithAPIBase(cfg.GitHub.APIBase),
		github.WithLogger(l),
	)
}

// ProvideSheetRefresher assembles the refresh use case.
func ProvideSheetRefresher(
	uni repository.UniverseSource,
	builder *usecase.SheetBuilder,
	store repository.SnapshotStore,
	pub repository.Publisher,
	exporter repository.SheetPublisher,
	sc *sheetcache.Cache,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.SheetRefresher {
	return usecase.NewSheetRefresher(uni, builder, cfg.Backend.Type,
		usecase.WithSnapshotStore(store),
		usecase.WithPublisher(pub),
		usecase.WithExporter(exporter, cfg.GitHub.FilePath),
		usecase.WithSheetCache(sc),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	)
}

// ProvideSheetHandler creates the Echo HTTP handler.
func ProvideSheetHandler(l *applogger.Logger, refresher *usecase.SheetRefresher, store repository.SnapshotStore) *api.SheetEchoHandler {
	return api.NewSheetEchoHandler(l, refresher, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	refresher *usecase.SheetRefresher,
	handler *api.SheetEchoHandler,
	chClient *pkgch.Client,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, refresher, handler, chClient, l)
}
