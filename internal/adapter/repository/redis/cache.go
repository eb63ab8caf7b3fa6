package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCache stores rendered report payloads. Every entry is keyed under a
// generation counter; Invalidate bumps the counter so older entries are never
// read again and expire on their own.
type ReportCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewReportCache creates a new ReportCache.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{
		client: client,
		prefix: "caseledger:report:",
		ttl:    ttl,
	}
}

// Slot resolves key against the current generation. A request reads and
// writes through the same slot, so a report built before a write lands in a
// generation that no later reader resolves to.
func (c *ReportCache) Slot(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	return c.prefix + strconv.FormatInt(gen, 10) + ":" + key, nil
}

// Get returns the payload stored in slot.
func (c *ReportCache) Get(ctx context.Context, slot string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, slot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return val, true, nil
}

// Set stores payload in slot.
func (c *ReportCache) Set(ctx context.Context, slot string, payload []byte) error {
	return c.client.Set(ctx, slot, payload, c.ttl).Err()
}

// Invalidate starts a new generation.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

func (c *ReportCache) generationKey() string {
	return c.prefix + "generation"
}
