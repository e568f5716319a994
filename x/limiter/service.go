// Package limiter implements the distributed token bucket admission engine.
// Bucket state lives in redis so that admission decisions are consistent
// across process instances. The whole load-refill-take-store sequence runs
// as a single server-side script, so concurrent callers on the same key
// never lose an update.
package limiter

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("limiter")

// Kind is the admitted resource kind of a bucket
type Kind string

const (
	KindMessage  Kind = "message"
	KindUpload   Kind = "upload"
	KindDownload Kind = "download"
)

// BucketKey returns the bucket state key for a (stream, resource kind) pair
func BucketKey(streamID uint, kind Kind) string {
	return fmt.Sprintf("rl:%d:%s", streamID, kind)
}

// Service is the interface for the admission engine
type Service interface {
	// Allow admits an all-or-nothing unit of work. On denial no tokens are
	// taken, but the refreshed bucket state is persisted anyway so that
	// unsuccessful calls still refill future capacity correctly.
	// cost <= 0 is admitted without touching the store.
	Allow(ctx context.Context, key string, rate float64, capacity float64, cost float64) (bool, error)
	// Grant takes up to want tokens and returns how many were taken,
	// truncated to an integer. want <= 0 short-circuits to 0.
	Grant(ctx context.Context, key string, rate float64, capacity float64, want int64) (int64, error)
}

type service struct {
	rdb *redis.Client
}

// NewService creates a new admission engine on the given redis client
func NewService(rdb *redis.Client) Service {
	return &service{rdb: rdb}
}

// bucketScript loads, refills and takes from a bucket atomically.
// KEYS[1]: bucket key
// ARGV: rate, capacity, amount, allmode (1 = all-or-nothing), ttl seconds
// Returns the taken amount, or -1 when an all-or-nothing take was denied.
// Uses the redis server clock so instances never disagree about "now".
var bucketScript = redis.NewScript(`
local data = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local amount = tonumber(ARGV[3])
local allmode = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local t = redis.call('TIME')
local now = tonumber(t[1]) + tonumber(t[2]) / 1000000

local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed < 0 then
  elapsed = 0
end
tokens = tokens + rate * elapsed
if tokens > capacity then
  tokens = capacity
end

local taken = 0
if allmode == 1 then
  if tokens >= amount then
    tokens = tokens - amount
    taken = amount
  else
    taken = -1
  end
else
  taken = math.floor(math.min(amount, tokens))
  tokens = tokens - taken
end
if tokens < 0 then
  tokens = 0
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', KEYS[1], ttl)
return taken
`)

func (s *service) Allow(ctx context.Context, key string, rate float64, capacity float64, cost float64) (bool, error) {
	ctx, span := tracer.Start(ctx, "ServiceAllow")
	defer span.End()

	if cost <= 0 {
		return true, nil
	}

	taken, err := bucketScript.Run(ctx, s.rdb, []string{key}, rate, capacity, cost, 1, bucketTTL(rate, capacity)).Int64()
	if err != nil {
		span.RecordError(err)
		return false, errors.Wrap(err, "failed to run bucket script")
	}

	return taken >= 0, nil
}

func (s *service) Grant(ctx context.Context, key string, rate float64, capacity float64, want int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "ServiceGrant")
	defer span.End()

	if want <= 0 {
		return 0, nil
	}

	granted, err := bucketScript.Run(ctx, s.rdb, []string{key}, rate, capacity, want, 0, bucketTTL(rate, capacity)).Int64()
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrap(err, "failed to run bucket script")
	}

	return granted, nil
}

// bucketTTL bounds the lifetime of idle bucket state while preserving
// enough burst history for legitimately bursty traffic.
func bucketTTL(rate float64, capacity float64) int {
	if rate <= 0 {
		return 3600
	}
	ttl := int(capacity / rate * 10)
	if ttl < 30 {
		ttl = 30
	}
	return ttl
}
