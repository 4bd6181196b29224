package sheetcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ETFSheet/internal/domain/models"
	"ETFSheet/pkg/cache"
)

var sheetKey = cache.GenerateKey("sheet", "latest")

// Cache stores the latest computed sheet so reads do not wait on a
// refresh cycle. Sheets are stored as JSON strings, which both the
// memory and Redis backends handle natively.
type Cache struct {
	svc cache.Service
	ttl time.Duration
}

// New creates a sheet cache with the given TTL.
func New(svc cache.Service, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{svc: svc, ttl: ttl}
}

// Put stores the sheet as the latest snapshot.
func (c *Cache) Put(ctx context.Context, sheet *models.Sheet) error {
	if sheet == nil {
		return nil
	}
	data, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("marshal sheet: %w", err)
	}
	return c.svc.Set(ctx, sheetKey, string(data), c.ttl)
}

// Latest returns the cached sheet, or (nil, false) on a miss.
func (c *Cache) Latest(ctx context.Context) (*models.Sheet, bool, error) {
	var raw string
	if err := c.svc.Get(ctx, sheetKey, &raw); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var sheet models.Sheet
	if err := json.Unmarshal([]byte(raw), &sheet); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached sheet: %w", err)
	}
	return &sheet, true, nil
}

// Invalidate drops the cached sheet.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.svc.Delete(ctx, sheetKey)
}
