package cache

import (
	"context"
	"time"

	"github.com/breachradar/breach-risk-backend/internal/service/scan"
)

const latestScanKey = "breachradar:scan:latest"

// ScanCache keeps the most recent scan result hot for the read endpoints.
// It implements scan.ResultCache.
type ScanCache struct {
	cache Cache
	ttl   time.Duration
}

func NewScanCache(cache Cache, ttl time.Duration) *ScanCache {
	return &ScanCache{cache: cache, ttl: ttl}
}

// SetLatest stores the result under the well-known latest key.
func (c *ScanCache) SetLatest(ctx context.Context, r *scan.Result) error {
	return c.cache.SetJSON(ctx, latestScanKey, r, c.ttl)
}

// GetLatest returns the cached result, or nil on a miss.
func (c *ScanCache) GetLatest(ctx context.Context) (*scan.Result, error) {
	var r scan.Result
	if err := c.cache.GetJSON(ctx, latestScanKey, &r); err != nil {
		if _, miss := err.(ErrCacheKeyNotFound); miss {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
