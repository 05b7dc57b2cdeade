package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l.now = clock.Now
	return l, clock
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	start := time.Now()
	bucket := newTokenBucket(3, 1.0, start)

	for i := 0; i < 3; i++ {
		assert.True(t, bucket.take(start), "request %d within burst", i+1)
	}
	assert.False(t, bucket.take(start))

	remaining, reset, next := bucket.status(start)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, start.Add(3*time.Second), reset)
	assert.Equal(t, time.Second, next)

	assert.True(t, bucket.take(start.Add(time.Second)))
	assert.False(t, bucket.take(start.Add(time.Second)))

	// never exceeds capacity
	bucket.refill(start.Add(time.Hour))
	assert.Equal(t, 3.0, bucket.tokens)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, clock := newTestLimiter(t, NewConfig(true, 5, time.Minute, nil, nil))

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("127.0.0.1", "/api/admin", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
		assert.Equal(t, 4-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/api/admin", "GET")
	assert.False(t, allowed)
	assert.InDelta(t, float64(12*time.Second), float64(info.RetryAfter), float64(time.Millisecond))

	clock.Advance(13 * time.Second)
	allowed, _ = l.Allow("127.0.0.1", "/api/admin", "GET")
	assert.True(t, allowed)
}

func TestLimiter_AIEndpointBurst(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1000, time.Minute, nil, nil))

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("10.0.0.1", "/api/ai", "POST")
		require.True(t, allowed)
		assert.Equal(t, 10, info.Limit)
	}
	allowed, info := l.Allow("10.0.0.1", "/api/ai", "POST")
	assert.False(t, allowed)
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond))

	// other clients and other endpoints have their own buckets
	allowed, _ = l.Allow("10.0.0.2", "/api/ai", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/api/admin", "GET")
	assert.True(t, allowed)
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	cfg := NewConfig(true, 1000, time.Minute, nil, nil)
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/api/admin/", Method: "DELETE", Limit: 2, Window: time.Minute},
	}
	l, _ := newTestLimiter(t, cfg)

	allowed, _ := l.Allow("c", "/api/admin/collections/languages/0", "DELETE")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/admin/collections/education/3", "DELETE")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/api/admin/collections/languages/1", "DELETE")
	assert.False(t, allowed)
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1, time.Minute, []string{"good"}, []string{"bad"}))

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("good", "/api/ai", "POST")
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow("bad", "/health", "GET")
	assert.False(t, allowed)

	disabled, _ := newTestLimiter(t, NewConfig(false, 1, time.Minute, nil, nil))
	for i := 0; i < 5; i++ {
		allowed, _ := disabled.Allow("anyone", "/api/ai", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1, time.Minute, nil, nil))

	for i := 0; i < 20; i++ {
		allowed, info := l.Allow("c", "/health", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	assert.Zero(t, l.Len())
}

func TestLimiter_EvictIdle(t *testing.T) {
	l, clock := newTestLimiter(t, NewConfig(true, 10, time.Minute, nil, nil))

	l.Allow("old", "/api/admin", "GET")
	clock.Advance(2 * time.Hour)
	l.Allow("new", "/api/admin", "GET")
	require.Equal(t, 2, l.Len())

	l.evictIdle()
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_StopIdempotent(t *testing.T) {
	cfg := NewConfig(true, 10, time.Minute, nil, nil)
	cfg.CleanupInterval = time.Millisecond
	l := NewLimiter(cfg)

	l.Stop()
	l.Stop()
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 50, time.Minute, nil, nil))

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("shared", "/api/admin", "GET"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowedCount)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
		wantLimit    int
	}{
		{"/api/ai", "POST", "/api/ai", 10},
		{"/api/upload", "DELETE", "/api/upload", 20},
		{"/api/admin/login", "POST", "/api/admin/login", 5},
		{"/api/admin", "POST", "/api/admin", 100},
		{"/api/admin/collections/languages/2/move", "POST", "/api/admin/", 100},
		{"/api/admin/topskills", "DELETE", "/api/admin/", 100},
		{"/health", "GET", "/health", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			match := MatchEndpoint(tt.path, tt.method, configs)
			require.NotNil(t, match)
			assert.Equal(t, tt.wantPath, match.Path)
			assert.Equal(t, tt.wantLimit, match.Limit)
		})
	}

	assert.Nil(t, MatchEndpoint("/api/admin", "GET", configs))
	assert.Nil(t, MatchEndpoint("/api/ai", "GET", configs))
}

func TestMatchEndpoint_AnyMethod(t *testing.T) {
	configs := []EndpointConfig{{Path: "/api/", Limit: 1, Window: time.Second}}
	assert.NotNil(t, MatchEndpoint("/api/x", "PATCH", configs))
}
