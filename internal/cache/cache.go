// Package cache provides small TTL byte caches keyed by string.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque values for a limited time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// DefaultMemoryEntries caps a Memory cache built by the CLI.
const DefaultMemoryEntries = 1024

type memEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process Cache bounded in size and age. The least
// recently used entry is evicted once size entries are held, and entries
// older than maxAge are purged in the background whether or not they are
// read again. A shorter ttl passed to Set is checked on access.
type Memory struct {
	lru *expirable.LRU[string, memEntry]
	now func() time.Time
}

// NewMemory returns an empty cache holding at most size entries, each for
// at most maxAge. A zero maxAge disables background expiry.
func NewMemory(size int, maxAge time.Duration) *Memory {
	return &Memory{
		lru: expirable.NewLRU[string, memEntry](size, nil, maxAge),
		now: time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value under key. A non-positive ttl keeps it until maxAge.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.lru.Add(key, e)
	return nil
}

// Len returns the number of entries held, including ones whose Set ttl
// has passed but that have not been purged yet.
func (m *Memory) Len() int { return m.lru.Len() }

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
