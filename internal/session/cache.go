// Package session keeps the catalog responses a browsing session may reuse.
//
// A Cache holds one record with two slots (filter options and the global notebook
// list) and a single timestamp. The record is all-or-nothing: once the TTL has passed
// both slots are gone, and every write refreshes the timestamp for the whole record.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"NotebookStore/internal/catalog"
)

const (
	DefaultTTL = 30 * time.Minute
	DefaultKey = "notebook-catalog-cache"
)

type Cache struct {
	mu    sync.Mutex
	store Storage
	key   string
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger
	rec   *catalog.Snapshot
}

type Option func(*Cache)

func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds the cache and loads whatever record store already holds under key.
// A stored record that has outlived the TTL is deleted and the cache starts cold.
func New(ctx context.Context, store Storage, key string, opts ...Option) *Cache {
	if key == "" {
		key = DefaultKey
	}
	c := &Cache{
		store: store,
		key:   key,
		ttl:   DefaultTTL,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.load(ctx)
	return c
}

func (c *Cache) Key() string { return c.key }

func (c *Cache) TTL() time.Duration { return c.ttl }

func (c *Cache) Get(ctx context.Context) (catalog.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rec == nil {
		return catalog.Snapshot{}, false
	}
	if c.expired(c.rec.Timestamp) {
		c.dropLocked(ctx)
		return catalog.Snapshot{}, false
	}
	return *c.rec, true
}

// Set replaces the record, stamping it with the current time.
func (c *Cache) Set(ctx context.Context, snap catalog.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writeLocked(ctx, snap)
}

// Update applies fn to the live record (or an empty one when cold) and persists the result.
func (c *Cache) Update(ctx context.Context, fn func(*catalog.Snapshot)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var snap catalog.Snapshot
	if c.rec != nil && !c.expired(c.rec.Timestamp) {
		snap = *c.rec
	}
	fn(&snap)
	return c.writeLocked(ctx, snap)
}

func (c *Cache) IsExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rec == nil || c.expired(c.rec.Timestamp)
}

func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rec = nil
	return c.store.Delete(ctx, c.key)
}

func (c *Cache) load(ctx context.Context) {
	raw, found, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.log.Warn("session cache load failed", zap.String("key", c.key), zap.Error(err))
		return
	}
	if !found {
		return
	}

	var rec catalog.Snapshot
	if err := json.Unmarshal(raw, &rec); err != nil {
		c.log.Warn("session cache record unreadable, discarding", zap.String("key", c.key), zap.Error(err))
		c.dropLocked(ctx)
		return
	}
	if c.expired(rec.Timestamp) {
		c.dropLocked(ctx)
		return
	}
	c.rec = &rec
}

func (c *Cache) writeLocked(ctx context.Context, snap catalog.Snapshot) error {
	snap.Timestamp = c.now().UnixMilli()
	c.rec = &snap

	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.store.Save(ctx, c.key, raw, c.ttl)
}

func (c *Cache) dropLocked(ctx context.Context) {
	c.rec = nil
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.log.Warn("session cache delete failed", zap.String("key", c.key), zap.Error(err))
	}
}

func (c *Cache) expired(ts int64) bool {
	return c.now().Sub(time.UnixMilli(ts)) >= c.ttl
}
