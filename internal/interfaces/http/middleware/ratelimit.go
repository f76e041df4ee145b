package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/minorchanges/pkg/errors"
)

// RateLimiter decides whether a request keyed by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the limiter state reported in response headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc defaults to the client IP.
	KeyFunc         func(c *gin.Context) string
	SkipPaths       []string
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns 10 req/s with bursts of 20 per client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

func clientIPKey(c *gin.Context) string { return c.ClientIP() }

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter is an in-memory token bucket per key.
type TokenBucketLimiter struct {
	rate            float64
	burstSize       int
	mu              sync.RWMutex
	buckets         map[string]*tokenBucket
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewTokenBucketLimiter creates a limiter and, when cleanupInterval > 0,
// starts a goroutine that drops idle buckets until Stop is called.
func NewTokenBucketLimiter(rate float64, burstSize int, cleanupInterval time.Duration) *TokenBucketLimiter {
	if burstSize < 1 {
		burstSize = 1
	}
	l := &TokenBucketLimiter{
		rate:            rate,
		burstSize:       burstSize,
		buckets:         make(map[string]*tokenBucket),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow takes one token from key's bucket.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.RLock()
	bucket, ok := l.buckets[key]
	rate, burst := l.rate, l.burstSize
	l.mu.RUnlock()
	if !ok {
		l.mu.Lock()
		if bucket, ok = l.buckets[key]; !ok {
			bucket = &tokenBucket{tokens: float64(burst), lastRefill: now}
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * rate
	if bucket.tokens > float64(burst) {
		bucket.tokens = float64(burst)
	}
	bucket.lastRefill = now

	info := RateLimitInfo{Limit: burst}
	if rate > 0 {
		info.ResetAt = now.Add(time.Duration(float64(time.Second) / rate))
	}
	if bucket.tokens >= 1 {
		bucket.tokens--
		info.Remaining = int(bucket.tokens)
		return true, info
	}
	return false, info
}

// SetRate replaces the refill rate and burst size.  Existing buckets keep
// their tokens, capped to the new burst on their next request.
func (l *TokenBucketLimiter) SetRate(rate float64, burstSize int) {
	if burstSize < 1 {
		burstSize = 1
	}
	l.mu.Lock()
	l.rate, l.burstSize = rate, burstSize
	l.mu.Unlock()
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup drops buckets that are full and untouched for a whole interval.
func (l *TokenBucketLimiter) cleanup() {
	threshold := l.now().Add(-l.cleanupInterval)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		if b.lastRefill.Before(threshold) && b.tokens >= float64(l.burstSize)-1 {
			delete(l.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine.  It is safe to call more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// BucketCount returns the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// RateLimit rejects requests over the limit with 429 and sets the
// X-RateLimit-* headers on every response.
func RateLimit(limiter RateLimiter, config RateLimitConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIPKey
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		allowed, info := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		if !info.ResetAt.IsZero() {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
		}
		if !allowed {
			retry := int(time.Until(info.ResetAt).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    errors.ErrCodeRateLimited.String(),
				"message": "rate limit exceeded, please retry later",
			})
			return
		}
		c.Next()
	}
}

//Personal.AI order the ending
