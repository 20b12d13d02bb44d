package ratelimiter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newBucket(t *testing.T, clock *fakeClock, cfg ratelimiter.Config) (*ratelimiter.Bucket, *ratelimiter.MemoryStore) {
	t.Helper()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clock.Now), ratelimiter.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })
	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b, store
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	for name, cfg := range map[string]ratelimiter.Config{
		"zero capacity": {Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		"zero rate":     {Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		"zero interval": {Capacity: 1, RefillRate: 1},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	b, _ := newBucket(t, clock, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Second})

	for i := range 3 {
		res, err := b.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := b.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, time.Second, res.RetryAfter(clock.Now()))

	other, err := b.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "keys are independent")

	clock.Advance(time.Second)
	res, err = b.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed(), "denied requests must not drain the refill")
	assert.Equal(t, 0, res.Remaining)

	clock.Advance(time.Hour)
	res, err = b.Status(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining, "refill is capped at capacity")

	_, err = b.AllowN(ctx, "10.0.0.1", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestBucket_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	b, store := newBucket(t, clock, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})

	_, err := b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, b.Reset(ctx, "k"))
	assert.Equal(t, 0, store.Len())

	res, err := b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.0.2.1:5000", want: "192.0.2.1"},
		{name: "cloudflare wins", headers: map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.1"}, remote: "192.0.2.1:5000", want: "203.0.113.9"},
		{name: "first valid forwarded", headers: map[string]string{"X-Forwarded-For": "junk, 198.51.100.7, 198.51.100.8"}, remote: "192.0.2.1:5000", want: "198.51.100.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "2001:db8::1"}, remote: "192.0.2.1:5000", want: "2001:db8::1"},
		{name: "invalid header falls back", headers: map[string]string{"X-Real-IP": "not-an-ip"}, remote: "192.0.2.1:5000", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ratelimiter.ClientIP(r))
		})
	}
}

func TestComposite(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5000"

	route := func(*http.Request) string { return "send" }
	empty := func(*http.Request) string { return "" }
	long := func(*http.Request) string { return strings.Repeat("x", 80) }

	assert.Equal(t, "192.0.2.1:send", ratelimiter.Composite(ratelimiter.ClientIP, empty, route)(r))

	hashed := ratelimiter.Composite(ratelimiter.ClientIP, long)(r)
	assert.LessOrEqual(t, len(hashed), 13)
	assert.Equal(t, hashed, ratelimiter.Composite(ratelimiter.ClientIP, long)(r))
}

func TestSetHeaders(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rec := httptest.NewRecorder()
	ratelimiter.SetHeaders(rec, &ratelimiter.Result{Limit: 5, Remaining: 4, ResetAt: now.Add(time.Second)}, now)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Empty(t, rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	ratelimiter.SetHeaders(rec, &ratelimiter.Result{Limit: 5, Remaining: -1, ResetAt: now.Add(1500 * time.Millisecond)}, now)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}
