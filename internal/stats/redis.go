package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Redis records counters in Redis hashes:
//
//	<prefix>:total              field <kind>:<outcome>
//	<prefix>:minute:<yyyymmddhhmm> field <kind>:<outcome>, expires after ttl
//	<prefix>:stock:<name>       field <kind>:<outcome>, expires after ttl
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix. Surrounding colons are trimmed.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = strings.Trim(prefix, ":") }
}

// WithTTL sets the expiry of bucketed and per-stock keys.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = d }
}

// NewRedis creates a Redis store on top of an existing client.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		rdb:    rdb,
		prefix: "stockserver:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record increments the counters for rec in a single pipeline.
func (r *Redis) Record(ctx context.Context, rec domain.TransactionRecord) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	at := rec.CompletedAt
	if at.IsZero() {
		at = time.Now()
	}
	field := fieldName(rec)

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucketKey, r.ttl)
	}

	if rec.Stock != "" {
		stockKey := r.prefix + ":stock:" + rec.Stock
		pipe.HIncrBy(ctx, stockKey, field, 1)
		if r.ttl > 0 {
			pipe.Expire(ctx, stockKey, r.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis stats: %w", err)
	}
	return nil
}

func fieldName(rec domain.TransactionRecord) string {
	kind := string(rec.Kind)
	if kind == "" {
		kind = "unknown"
	}
	return kind + ":" + rec.Outcome
}
