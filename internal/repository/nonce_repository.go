package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const nonceKeyPrefix = "evtcal:nonce:"

// NonceRepository records used download token nonces in Redis.
type NonceRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewNonceRepository constructs a Redis-backed nonce store.
func NewNonceRepository(client *redis.Client, logger *zap.Logger) *NonceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NonceRepository{client: client, logger: logger}
}

// Consume marks nonce as used for ttl. It returns false when the nonce was
// already consumed.
func (r *NonceRepository) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client not configured")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	key := nonceKeyPrefix + nonce
	ok, err := r.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		r.logger.Debug("nonce replayed", zap.String("key", key))
	}
	return ok, nil
}

// MemoryNonceRepository is the in-process nonce store used when Redis is off.
// Entries are dropped once their TTL passes.
type MemoryNonceRepository struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryNonceRepository constructs an empty in-memory store.
func NewMemoryNonceRepository() *MemoryNonceRepository {
	return &MemoryNonceRepository{entries: make(map[string]time.Time), now: time.Now}
}

// Consume marks nonce as used for ttl.
func (r *MemoryNonceRepository) Consume(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)
	if expiry, ok := r.entries[nonce]; ok && now.Before(expiry) {
		return false, nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	r.entries[nonce] = now.Add(ttl)
	return true, nil
}

// Len reports how many nonces are currently held.
func (r *MemoryNonceRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *MemoryNonceRepository) prune(now time.Time) {
	for nonce, expiry := range r.entries {
		if !now.Before(expiry) {
			delete(r.entries, nonce)
		}
	}
}
