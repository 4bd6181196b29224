package sheetcache

import (
	"context"
	"testing"
	"time"

	"ETFSheet/internal/domain/models"
	"ETFSheet/pkg/cache"
)

func testSheet() *models.Sheet {
	return &models.Sheet{
		GeneratedAt: time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC),
		Records: []models.ReturnRecord{
			{Ticker: "SPY", LatestClose: 512.3, DailyReturn: 1.2, BaseDate: "2024-03-15"},
			{Ticker: "TLT", LatestClose: 94.1, DailyReturn: -0.4, BaseDate: "2024-03-15"},
		},
	}
}

func TestPutAndLatest(t *testing.T) {
	c := New(cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	if _, hit, err := c.Latest(ctx); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	if err := c.Put(ctx, testSheet()); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, hit, err := c.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(got.Records) != 2 || got.Records[0].Ticker != "SPY" {
		t.Fatalf("unexpected cached sheet %+v", got)
	}
	if got.Records[0].LatestClose != 512.3 {
		t.Fatalf("unexpected close %v", got.Records[0].LatestClose)
	}
}

func TestInvalidate(t *testing.T) {
	c := New(cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, testSheet()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, hit, err := c.Latest(ctx); err != nil || hit {
		t.Fatalf("expected miss after invalidate, hit=%v err=%v", hit, err)
	}
}

func TestPutNilSheetIsNoop(t *testing.T) {
	c := New(cache.NewMemoryCache(), time.Minute)
	if err := c.Put(context.Background(), nil); err != nil {
		t.Fatalf("put nil: %v", err)
	}
}
