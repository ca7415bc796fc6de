// Package cache holds timestamped values with lazy expiry.
//
// Entries are never evicted actively. A stale entry stays in its store until
// the next successful fetch for the same key overwrites it.
package cache

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for TTL checks.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now returns the current time.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock uses time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// Entry wraps a cached value with the time it was fetched.
type Entry[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsExpired reports whether a value fetched at fetchedAt is stale at now.
// An entry is valid only while now - fetchedAt < ttl.
func IsExpired(now, fetchedAt time.Time, ttl time.Duration) bool {
	return now.Sub(fetchedAt) >= ttl
}

// Store persists entries by key.
type Store[T any] interface {
	Get(ctx context.Context, key string) (Entry[T], bool, error)
	Set(ctx context.Context, key string, entry Entry[T]) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// MemoryStore is a goroutine-safe in-process Store.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{entries: make(map[string]Entry[T])}
}

func (s *MemoryStore[T]) Get(_ context.Context, key string) (Entry[T], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore[T]) Set(_ context.Context, key string, entry Entry[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore[T]) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry[T])
	return nil
}

func (s *MemoryStore[T]) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// TTLCache reads through a Store, treating expired entries as misses.
type TTLCache[T any] struct {
	store Store[T]
	ttl   time.Duration
	clock Clock
}

// New builds a TTLCache. A nil clock means SystemClock.
func New[T any](store Store[T], ttl time.Duration, clock Clock) *TTLCache[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &TTLCache[T]{store: store, ttl: ttl, clock: clock}
}

// Get returns the fresh value for key, if any. Store failures count as misses.
func (c *TTLCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false
	}
	if IsExpired(c.clock.Now(), entry.FetchedAt, c.ttl) {
		return zero, false
	}
	return entry.Value, true
}

// Put stores value under key stamped with the current time.
func (c *TTLCache[T]) Put(ctx context.Context, key string, value T) error {
	return c.store.Set(ctx, key, Entry[T]{Value: value, FetchedAt: c.clock.Now()})
}

// Clear drops every entry.
func (c *TTLCache[T]) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Len reports how many entries are held, fresh or stale.
func (c *TTLCache[T]) Len(ctx context.Context) int {
	n, err := c.store.Len(ctx)
	if err != nil {
		return 0
	}
	return n
}

// TTL returns the configured time-to-live.
func (c *TTLCache[T]) TTL() time.Duration {
	return c.ttl
}
