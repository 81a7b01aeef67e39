package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// keyPrefix is the Redis key prefix for sliding windows.
const keyPrefix = "featherbook:ratelimit:"

// slidingWindowScript trims a sorted set of admission times to the window
// and adds the current request when there is room. Scores are milliseconds.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	-- Drop timestamps at or before now - window
	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

	local count = redis.call('ZCARD', key)
	local allowed = 0
	if count < limit then
		redis.call('ZADD', key, now, member)
		count = count + 1
		allowed = 1
	end
	redis.call('PEXPIRE', key, window)

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local oldest_ms = now
	if oldest[2] then
		oldest_ms = tonumber(oldest[2])
	end

	return {allowed, count, oldest_ms}
`)

// Redis is a Limiter shared by every instance that uses the same Redis.
type Redis struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedis creates a Redis-backed limiter admitting limit requests per window.
func NewRedis(client redis.Cmdable, limit int, win time.Duration) *Redis {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if win <= 0 {
		win = DefaultWindow
	}
	return &Redis{client: client, limit: limit, window: win, now: time.Now}
}

// Allow records the request for key in Redis when there is room.
// Keys are hashed so raw client addresses are never stored.
func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	now := r.now()
	nowMs := now.UnixMilli()

	res, err := slidingWindowScript.Run(ctx, r.client,
		[]string{keyPrefix + hashKey(key)},
		nowMs, r.window.Milliseconds(), r.limit, ulid.Make().String(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if len(res) != 3 {
		return Result{}, fmt.Errorf("failed to check rate limit: unexpected reply %v", res)
	}

	allowed := res[0] == 1
	count := int(res[1])
	resetAt := time.UnixMilli(res[2]).Add(r.window)

	result := Result{
		Allowed:   allowed,
		Limit:     r.limit,
		Remaining: max(r.limit-count, 0),
		ResetAt:   resetAt,
	}
	if !allowed {
		result.RetryAfter = resetAt.Sub(now)
	}
	return result, nil
}

// hashKey creates a truncated SHA256 hash of a client key.
func hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:8])
}
