// Package market resolves market metadata (title, tags) through a two-tier
// cache: an in-memory map in front of a durable store, with a REST fetch as
// the source of truth.
package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/valshi/whaletracker/internal/model"
)

// Store is the durable metadata tier.
type Store interface {
	GetMetadata(ctx context.Context, ticker string) (model.MarketMetadata, bool, error)
	PutMetadata(ctx context.Context, meta model.MarketMetadata) error
}

// Fetcher retrieves metadata from the venue.
type Fetcher interface {
	FetchMetadata(ctx context.Context, ticker string) (model.MarketMetadata, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, ticker string) (model.MarketMetadata, error)

func (f FetcherFunc) FetchMetadata(ctx context.Context, ticker string) (model.MarketMetadata, error) {
	return f(ctx, ticker)
}

// Cache is the two-tier metadata cache. The memory tier is only written
// while the stream is connected: a disconnected process is likely serving
// stale fetches, and the durable tier already absorbs them.
type Cache struct {
	store     Store
	fetcher   Fetcher
	connected func() bool
	now       func() time.Time
	logger    *slog.Logger

	mu  sync.RWMutex
	mem map[string]model.MarketMetadata
}

// NewCache creates a metadata cache. connected reports stream liveness and
// may be nil (treated as always connected).
func NewCache(store Store, fetcher Fetcher, connected func() bool, logger *slog.Logger) *Cache {
	if connected == nil {
		connected = func() bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		store:     store,
		fetcher:   fetcher,
		connected: connected,
		now:       time.Now,
		logger:    logger,
		mem:       make(map[string]model.MarketMetadata),
	}
}

// Resolve returns metadata for a ticker. It never fails: when every tier
// misses or errors, the result degrades to the ticker itself as title with
// no tags. Concurrent resolves of the same ticker may fetch twice; the
// write-through is idempotent.
func (c *Cache) Resolve(ctx context.Context, ticker string) model.MarketMetadata {
	c.mu.RLock()
	meta, ok := c.mem[ticker]
	c.mu.RUnlock()
	if ok && !meta.Placeholder() {
		return meta
	}

	if c.store != nil {
		stored, found, err := c.store.GetMetadata(ctx, ticker)
		if err != nil {
			c.logger.Warn("metadata store lookup failed", "ticker", ticker, "error", err)
		} else if found && !stored.Placeholder() {
			c.seedMemory(stored)
			return stored
		}
	}

	fetched, err := c.fetch(ctx, ticker)
	if err != nil {
		c.logger.Warn("metadata fetch failed, degrading to ticker", "ticker", ticker, "error", err)
		return model.MarketMetadata{Ticker: ticker, Title: ticker}
	}

	return fetched
}

// Observe opportunistically seeds the memory tier from stream traffic.
// Placeholder metadata is not cached so a real title can still land later.
func (c *Cache) Observe(meta model.MarketMetadata) {
	if meta.Ticker == "" || meta.Placeholder() {
		return
	}
	c.mu.Lock()
	c.mem[meta.Ticker] = meta
	c.mu.Unlock()
}

// Len returns the memory tier size.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

func (c *Cache) fetch(ctx context.Context, ticker string) (model.MarketMetadata, error) {
	meta, err := c.fetcher.FetchMetadata(ctx, ticker)
	if err != nil {
		return model.MarketMetadata{}, err
	}
	if meta.FetchedAt == 0 {
		meta.FetchedAt = c.now().UnixMilli()
	}

	if c.store != nil {
		if err := c.store.PutMetadata(ctx, meta); err != nil {
			c.logger.Warn("metadata write-through failed", "ticker", ticker, "error", err)
		}
	}
	c.seedMemory(meta)

	return meta, nil
}

func (c *Cache) seedMemory(meta model.MarketMetadata) {
	if meta.Placeholder() || !c.connected() {
		return
	}
	c.mu.Lock()
	c.mem[meta.Ticker] = meta
	c.mu.Unlock()
}
