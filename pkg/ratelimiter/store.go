package ratelimiter

import (
	"context"
	"time"
)

// Store persists bucket state.
type Store interface {
	// ConsumeTokens refills the bucket for the elapsed intervals, then takes
	// tokens from it. A negative remaining means the request is denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// refill returns the token count after the intervals elapsed since last,
// capped at capacity, and whether any interval passed.
func refill(tokens int, last, now time.Time, cfg Config) (int, bool) {
	intervals := now.Sub(last) / cfg.RefillInterval
	if intervals <= 0 {
		return tokens, false
	}
	// Capacity/RefillRate+1 intervals always fill the bucket.
	intervals = min(intervals, time.Duration(cfg.Capacity/cfg.RefillRate+1))
	return min(tokens+int(intervals)*cfg.RefillRate, cfg.Capacity), true
}
