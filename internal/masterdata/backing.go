package masterdata

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Backing stores encoded reference lists and their version counters.
type Backing interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Version(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisBacking keeps lists in Redis without expiry so every console process
// and the worker share one copy.
type RedisBacking struct {
	client *redis.Client
}

// NewRedisBacking wraps client.
func NewRedisBacking(client *redis.Client) *RedisBacking {
	return &RedisBacking{client: client}
}

// Get returns the stored value for key.
func (b *RedisBacking) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores value under key with no TTL.
func (b *RedisBacking) Set(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, key, value, 0).Err()
}

// Version reads a counter, treating a missing key as zero.
func (b *RedisBacking) Version(ctx context.Context, key string) (int64, error) {
	v, err := b.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Incr bumps a counter.
func (b *RedisBacking) Incr(ctx context.Context, key string) (int64, error) {
	return b.client.Incr(ctx, key).Result()
}

// MemoryBacking is a process-local Backing.
type MemoryBacking struct {
	mu       sync.RWMutex
	values   map[string][]byte
	counters map[string]int64
}

// NewMemoryBacking returns an empty MemoryBacking.
func NewMemoryBacking() *MemoryBacking {
	return &MemoryBacking{values: make(map[string][]byte), counters: make(map[string]int64)}
}

// Get returns the stored value for key.
func (b *MemoryBacking) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (b *MemoryBacking) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

// Version reads a counter.
func (b *MemoryBacking) Version(_ context.Context, key string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.counters[key], nil
}

// Incr bumps a counter.
func (b *MemoryBacking) Incr(_ context.Context, key string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters[key]++
	return b.counters[key], nil
}
