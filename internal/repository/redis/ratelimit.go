package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set of hit timestamps.
// KEYS[1] window key; ARGV: now_ms, window_ms, limit, unique member.
// Returns {allowed, hits, retry_after_ms}.
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
redis.call('ZADD', key, 'NX', now, ARGV[4])
local hits = redis.call('ZCARD', key)
redis.call('PEXPIRE', key, window)

if hits <= limit then
  return {1, hits, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = window - (now - (tonumber(oldest[2]) or (now - window)))
if retry < 0 then retry = 0 end
return {0, hits, retry}
`

// Decision is the outcome of one rate-limited attempt.
type Decision struct {
	Allowed    bool
	Hits       int64
	RetryAfter time.Duration
}

// SlidingWindowLimiter allows at most limit attempts per id within window,
// for one scope such as "sign-in".
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	script *redis.Script
	now    func() time.Time
}

func NewSlidingWindowLimiter(rdb *redis.Client, scope string, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaSlidingWindow),
		now:    time.Now,
	}
}

// Allow records an attempt for id and reports whether it fits the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, id string) (Decision, error) {
	const op = "redis.SlidingWindowLimiter.Allow"

	member, err := randomHex(12)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := l.script.Run(ctx, l.rdb,
		[]string{KeyRateLimit(l.scope, id)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, member,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	return parseDecision(res)
}

func parseDecision(res []int64) (Decision, error) {
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("unexpected script result: %v", res)
	}
	return Decision{
		Allowed:    res[0] == 1,
		Hits:       res[1],
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
