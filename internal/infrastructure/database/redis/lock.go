package redis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// releaseScript deletes the key only when it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Mutex is a single-key Redis lock.  It expires after its TTL so that a
// crashed holder cannot block other replicas forever.
type Mutex struct {
	client     *Client
	key        string
	token      string
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
	logger     logging.Logger
}

// MutexOption configures NewMutex.
type MutexOption func(*Mutex)

func WithLockTTL(ttl time.Duration) MutexOption {
	return func(m *Mutex) { m.ttl = ttl }
}

// WithRetry sets how often and how far apart Lock retries.
func WithRetry(count int, delay time.Duration) MutexOption {
	return func(m *Mutex) {
		m.retryCount = count
		m.retryDelay = delay
	}
}

// NewMutex returns a lock on "<prefix>lock:<name>".
func NewMutex(client *Client, prefix, name string, log logging.Logger, opts ...MutexOption) *Mutex {
	if log == nil {
		log = logging.NewNopLogger()
	}
	m := &Mutex{
		client:     client,
		key:        prefix + "lock:" + name,
		token:      uuid.NewString(),
		ttl:        2 * time.Minute,
		retryDelay: 500 * time.Millisecond,
		retryCount: 240,
		logger:     log,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Key returns the Redis key guarding the lock.
func (m *Mutex) Key() string { return m.key }

// TryLock makes one attempt to take the lock.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	if m.client.isClosed() {
		return false, ErrClientClosed
	}
	ok, err := m.client.rdb.SetNX(ctx, m.key, m.token, m.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.CodeCacheError, "lock attempt failed").WithDetail(m.key)
	}
	return ok, nil
}

// Lock retries TryLock until it succeeds, the retries run out or ctx ends.
func (m *Mutex) Lock(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		ok, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			m.logger.Debug("Lock acquired", logging.String("key", m.key), logging.Int("attempts", attempt+1))
			return nil
		}
		if attempt >= m.retryCount {
			return ErrLockNotAcquired.WithDetail(m.key)
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "waiting for lock").WithDetail(m.key)
		case <-time.After(m.retryDelay):
		}
	}
}

// Unlock releases the lock if this Mutex still holds it.
func (m *Mutex) Unlock(ctx context.Context) error {
	if m.client.isClosed() {
		return ErrClientClosed
	}
	n, err := m.client.rdb.Eval(ctx, releaseScript, []string{m.key}, m.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "lock release failed").WithDetail(m.key)
	}
	if n == 0 {
		return ErrLockNotHeld.WithDetail(m.key)
	}
	return nil
}

// WithLock runs fn while holding m.
func WithLock(ctx context.Context, m *Mutex, fn func() error) error {
	if err := m.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := m.Unlock(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("Failed to release lock", logging.String("key", m.key), logging.Err(err))
		}
	}()
	return fn()
}

//Personal.AI order the ending
