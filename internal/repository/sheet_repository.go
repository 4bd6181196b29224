package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ETFSheet/internal/domain/models"
	"ETFSheet/internal/domain/repository"
	pkgkafka "ETFSheet/pkg/kafka"
)

// SchemaStatements returns idempotent DDL for the snapshot table.
func SchemaStatements(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			generated_at DateTime,
			ticker LowCardinality(String),
			name String,
			grp LowCardinality(String),
			close Float64,
			daily_return Float64,
			weekly_return Float64,
			monthly_return Float64,
			ytd_return Float64,
			days_22_return Float64,
			days_132_return Float64,
			days_264_return Float64,
			ultra_short_vol Float64,
			short_term_vol Float64,
			long_term_vol Float64,
			mdd Float64,
			high_52w_drawdown Float64,
			sharpe_ratio Float64,
			base_date Date,
			weekly_base_date Date,
			monthly_base_date Date
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(generated_at)
		ORDER BY (ticker, generated_at)`, database, table),
	}
}

const recordColumns = "generated_at, ticker, name, grp, close, daily_return, weekly_return, monthly_return, ytd_return, days_22_return, days_132_return, days_264_return, ultra_short_vol, short_term_vol, long_term_vol, mdd, high_52w_drawdown, sharpe_ratio, base_date, weekly_base_date, monthly_base_date"

// ClickHouseSnapshotStore implements SnapshotStore for ClickHouse.
type ClickHouseSnapshotStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseSnapshotStore creates ClickHouse snapshot storage.
// table is the fully qualified table name (db.table).
func NewClickHouseSnapshotStore(db *sql.DB, table string) repository.SnapshotStore {
	return &ClickHouseSnapshotStore{db: db, table: table}
}

func (s *ClickHouseSnapshotStore) Init(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSnapshotStore) StoreSheet(ctx context.Context, sheet *models.Sheet) error {
	if sheet == nil || len(sheet.Records) == 0 {
		return nil
	}

	values := make([]string, 0, len(sheet.Records))
	args := make([]interface{}, 0, len(sheet.Records)*21)
	for _, r := range sheet.Records {
		if r.Ticker == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			sheet.GeneratedAt,
			r.Ticker,
			r.Name,
			r.Group,
			r.LatestClose,
			r.DailyReturn,
			r.WeeklyReturn,
			r.MonthlyReturn,
			r.YTDReturn,
			r.Days22Return,
			r.Days132Return,
			r.Days264Return,
			r.UltraShortVol,
			r.ShortTermVol,
			r.LongTermVol,
			r.MDD,
			r.High52WDD,
			r.SharpeRatio,
			parseDateOrZero(r.BaseDate),
			parseDateOrZero(r.WeeklyBaseDate),
			parseDateOrZero(r.MonthlyBaseDate),
		)
	}
	if len(values) == 0 {
		return nil
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, recordColumns, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseSnapshotStore) LatestRecords(ctx context.Context, asOf time.Time, limit int) ([]models.ReturnRecord, error) {
	q := fmt.Sprintf(`SELECT ticker, name, grp, close, daily_return, weekly_return, monthly_return, ytd_return,
		days_22_return, days_132_return, days_264_return,
		ultra_short_vol, short_term_vol, long_term_vol, mdd, high_52w_drawdown, sharpe_ratio,
		base_date, weekly_base_date, monthly_base_date
		FROM %s WHERE generated_at <= ?
		ORDER BY generated_at DESC, ticker ASC LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ReturnRecord
	for rows.Next() {
		var r models.ReturnRecord
		var base, weekly, monthly time.Time
		if err := rows.Scan(&r.Ticker, &r.Name, &r.Group, &r.LatestClose,
			&r.DailyReturn, &r.WeeklyReturn, &r.MonthlyReturn, &r.YTDReturn,
			&r.Days22Return, &r.Days132Return, &r.Days264Return,
			&r.UltraShortVol, &r.ShortTermVol, &r.LongTermVol,
			&r.MDD, &r.High52WDD, &r.SharpeRatio,
			&base, &weekly, &monthly); err != nil {
			return nil, err
		}
		r.BaseDate = base.Format(models.DateFormat)
		r.WeeklyBaseDate = weekly.Format(models.DateFormat)
		r.MonthlyBaseDate = monthly.Format(models.DateFormat)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *ClickHouseSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSnapshotStore) Close() error {
	return nil // pool managed by pkg client
}

func parseDateOrZero(s string) time.Time {
	t, err := time.Parse(models.DateFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// KafkaSheetPublisher implements Publisher for Kafka.
type KafkaSheetPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSheetPublisher creates Kafka publisher.
func NewKafkaSheetPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaSheetPublisher{producer: producer, topic: topic}
}

func (p *KafkaSheetPublisher) PublishSheet(ctx context.Context, sheet *models.Sheet) error {
	if sheet == nil || len(sheet.Records) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(sheet.Records))
	for i, r := range sheet.Records {
		msgs[i] = pkgkafka.Message{
			Key: []byte(r.Ticker),
			Value: map[string]interface{}{
				"generated_at": sheet.GeneratedAt.Unix(),
				"record":       r,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSheetPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
