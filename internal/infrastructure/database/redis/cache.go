package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

var (
	ErrCacheMiss           = errors.New(errors.CodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// AccessRecorder is told about every lookup, keyed by tier ("lru" or
// "redis").
type AccessRecorder interface {
	RecordCacheAccess(cache string, hit bool)
}

// VariantCache stores the variants generated for one input molecule under a
// given engine configuration.  fingerprint identifies the configuration and
// key is the canonical key of the input as parsed.
type VariantCache interface {
	Get(ctx context.Context, fingerprint, key string) ([]variant.Record, error)
	Set(ctx context.Context, fingerprint, key string, recs []variant.Record) error
	Invalidate(ctx context.Context, fingerprint string, keys ...string) error
	// GetOrCompute returns the cached records, or runs compute once per key
	// across concurrent callers and stores its result.  hit reports whether
	// compute was skipped.
	GetOrCompute(ctx context.Context, fingerprint, key string,
		compute func(ctx context.Context) ([]variant.Record, error)) (recs []variant.Record, hit bool, err error)
	Ping(ctx context.Context) error
}

type redisCache struct {
	client   *Client
	logger   logging.Logger
	prefix   string
	ttl      time.Duration
	l1       *lru.Cache[string, []variant.Record]
	recorder AccessRecorder
	group    singleflight.Group
}

// CacheOption configures NewVariantCache.
type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.ttl = ttl }
}

// WithL1 puts an in-process LRU of the given size in front of Redis.
func WithL1(size int) CacheOption {
	return func(c *redisCache) {
		if size <= 0 {
			return
		}
		l1, err := lru.New[string, []variant.Record](size)
		if err == nil {
			c.l1 = l1
		}
	}
}

func WithRecorder(r AccessRecorder) CacheOption {
	return func(c *redisCache) { c.recorder = r }
}

// NewVariantCache builds a VariantCache on client.
func NewVariantCache(client *Client, log logging.Logger, opts ...CacheOption) VariantCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client: client,
		logger: log.Named("variant_cache"),
		prefix: "minorchanges:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cacheKey hashes the canonical key so that large molecules do not produce
// unbounded Redis keys.
func (c *redisCache) cacheKey(fingerprint, key string) string {
	sum := sha256.Sum256([]byte(key))
	return c.prefix + "variants:" + fingerprint + ":" + hex.EncodeToString(sum[:16])
}

func (c *redisCache) record(tier string, hit bool) {
	if c.recorder != nil {
		c.recorder.RecordCacheAccess(tier, hit)
	}
}

func (c *redisCache) Get(ctx context.Context, fingerprint, key string) ([]variant.Record, error) {
	full := c.cacheKey(fingerprint, key)
	if c.l1 != nil {
		if recs, ok := c.l1.Get(full); ok {
			c.record("lru", true)
			return recs, nil
		}
		c.record("lru", false)
	}

	data, err := c.client.Get(ctx, full).Bytes()
	if err == redis.Nil {
		c.record("redis", false)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to get from cache")
	}
	c.record("redis", true)

	var recs []variant.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}
	if c.l1 != nil {
		c.l1.Add(full, recs)
	}
	return recs, nil
}

func (c *redisCache) Set(ctx context.Context, fingerprint, key string, recs []variant.Record) error {
	if recs == nil {
		recs = []variant.Record{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	full := c.cacheKey(fingerprint, key)
	if err := c.client.Set(ctx, full, string(data), c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to write to cache")
	}
	if c.l1 != nil {
		c.l1.Add(full, recs)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context, fingerprint string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.cacheKey(fingerprint, k)
		if c.l1 != nil {
			c.l1.Remove(full[i])
		}
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to delete from cache")
	}
	return nil
}

func (c *redisCache) GetOrCompute(ctx context.Context, fingerprint, key string,
	compute func(ctx context.Context) ([]variant.Record, error)) ([]variant.Record, bool, error) {

	recs, err := c.Get(ctx, fingerprint, key)
	if err == nil {
		return recs, true, nil
	}
	if !stderrors.Is(err, ErrCacheMiss) {
		// A broken cache must not stop generation.
		c.logger.Warn("cache read failed, computing", logging.Err(err))
	}

	v, err, _ := c.group.Do(c.cacheKey(fingerprint, key), func() (interface{}, error) {
		out, cerr := compute(ctx)
		if cerr != nil {
			return nil, cerr
		}
		if serr := c.Set(ctx, fingerprint, key, out); serr != nil {
			c.logger.Warn("cache write failed", logging.Err(serr))
		}
		return out, nil
	})
	if err != nil {
		return nil, false, err
	}
	out, _ := v.([]variant.Record)
	return out, false, nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

//Personal.AI order the ending
