package settings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// settingsTTL bounds how stale a cached configuration can get. In a
// multi-instance deployment each instance keeps its own copy, so an edit on
// one instance is visible everywhere within this window at the latest.
const settingsTTL = 5 * time.Minute

// LoaderFunc fetches one organization's configuration from the persistent
// store.
type LoaderFunc[T any] func(ctx context.Context, orgID string) (T, error)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache is an in-process, per-organization configuration cache with a fixed
// TTL and explicit eviction. Get never fails: a loader error is logged and
// the defaults are returned and cached, so scoring never hard-fails on
// settings unavailability.
type Cache[T any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[T]
	ttl      time.Duration
	load     LoaderFunc[T]
	defaults func() T
	logger   *zap.Logger
	now      func() time.Time
}

type CacheOption[T any] func(*Cache[T])

// WithTTL overrides the default 5-minute TTL.
func WithTTL[T any](ttl time.Duration) CacheOption[T] {
	return func(c *Cache[T]) { c.ttl = ttl }
}

// WithClock overrides the time source; tests use it to expire entries.
func WithClock[T any](now func() time.Time) CacheOption[T] {
	return func(c *Cache[T]) { c.now = now }
}

func NewCache[T any](load LoaderFunc[T], defaults func() T, logger *zap.Logger, opts ...CacheOption[T]) *Cache[T] {
	if load == nil {
		panic("load must not be nil")
	}
	if defaults == nil {
		panic("defaults must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache[T]{
		entries:  make(map[string]entry[T]),
		ttl:      settingsTTL,
		load:     load,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the organization's configuration, from cache when the entry is
// younger than the TTL. Concurrent misses may each hit the store; the update
// is an overwrite, so the worst case is a redundant fetch.
func (c *Cache[T]) Get(ctx context.Context, orgID string) T {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[orgID]
	c.mu.RUnlock()
	if ok && now.Sub(e.fetchedAt) < c.ttl {
		return e.value
	}

	value, err := c.load(ctx, orgID)
	if err != nil {
		c.logger.Warn("settings load failed, using defaults",
			zap.String("organization_id", orgID),
			zap.Error(err))
		value = c.defaults()
	}

	c.mu.Lock()
	c.entries[orgID] = entry[T]{value: value, fetchedAt: now}
	c.mu.Unlock()

	return value
}

// Clear evicts one organization's entry. Called whenever its settings are
// edited.
func (c *Cache[T]) Clear(orgID string) {
	c.mu.Lock()
	delete(c.entries, orgID)
	c.mu.Unlock()
}

// ClearAll evicts every entry.
func (c *Cache[T]) ClearAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}
