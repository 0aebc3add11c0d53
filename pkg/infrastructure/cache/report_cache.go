package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vsinha/lotrecon/pkg/application/dto"
	"github.com/vsinha/lotrecon/pkg/infrastructure/logging"
)

// ErrCacheMiss is returned when no report is cached for a fingerprint
var ErrCacheMiss = errors.New("cache miss")

// KeyPrefix namespaces report keys
const KeyPrefix = "lotrecon:report:"

// Store is the key-value backend of a ReportCache
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var _ Store = (*Client)(nil)

// ReportCache stores encoded consolidation results with a TTL. Concurrent
// computations for the same fingerprint are collapsed into one.
type ReportCache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func NewReportCache(store Store, ttl time.Duration) *ReportCache {
	return &ReportCache{
		store:  store,
		ttl:    ttl,
		logger: logging.WithComponent("report-cache"),
	}
}

func buildKey(fingerprint string) string {
	return KeyPrefix + fingerprint
}

// Get returns the cached report or ErrCacheMiss
func (c *ReportCache) Get(ctx context.Context, fingerprint string) (*dto.ConsolidationResult, error) {
	data, err := c.store.Get(ctx, buildKey(fingerprint))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("reading cached report %s: %w", fingerprint, err)
	}

	var result dto.ConsolidationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding cached report %s: %w", fingerprint, err)
	}
	return &result, nil
}

func (c *ReportCache) Set(ctx context.Context, fingerprint string, result *dto.ConsolidationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding report %s: %w", fingerprint, err)
	}
	if err := c.store.Set(ctx, buildKey(fingerprint), data, c.ttl); err != nil {
		return fmt.Errorf("caching report %s: %w", fingerprint, err)
	}
	return nil
}

func (c *ReportCache) Invalidate(ctx context.Context, fingerprint string) error {
	return c.store.Del(ctx, buildKey(fingerprint))
}

// GetOrCompute returns the cached report for fingerprint, or runs compute and
// caches its result. The bool reports a cache hit. Cache read and write
// failures are logged and do not fail the call.
func (c *ReportCache) GetOrCompute(
	ctx context.Context,
	fingerprint string,
	compute func() (*dto.ConsolidationResult, error),
) (*dto.ConsolidationResult, bool, error) {
	if cached, err := c.Get(ctx, fingerprint); err == nil {
		c.logger.Debug("cache hit", "fingerprint", fingerprint)
		return cached, true, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("cache read failed", "fingerprint", fingerprint, "error", err)
	}

	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, fingerprint, result); err != nil {
			c.logger.Warn("cache write failed", "fingerprint", fingerprint, "error", err)
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*dto.ConsolidationResult), false, nil
}
