package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

// CachedListing is one captured listing result.
type CachedListing struct {
	Data       []domain.PhoneNumber
	CapturedAt time.Time
}

// ListingCache holds the last listing for TTL. Concurrent misses share a
// single fetch. Empty listings are returned but not cached.
type ListingCache struct {
	ttl   time.Duration
	clock func() time.Time
	fetch func(ctx context.Context) ([]domain.PhoneNumber, error)

	mu    sync.RWMutex
	entry *CachedListing
	// gen is bumped by Invalidate; a fetch started under an older gen
	// does not store its result.
	gen   uint64
	group singleflight.Group
}

func NewListingCache(ttl time.Duration, clock func() time.Time, fetch func(ctx context.Context) ([]domain.PhoneNumber, error)) *ListingCache {
	if clock == nil {
		clock = time.Now
	}
	return &ListingCache{ttl: ttl, clock: clock, fetch: fetch}
}

// Get returns the cached listing while now - CapturedAt < TTL, otherwise
// fetches a new one. The fetch runs detached from the caller's
// cancellation so one impatient caller cannot fail the others waiting on it.
func (c *ListingCache) Get(ctx context.Context) ([]domain.PhoneNumber, error) {
	if e := c.fresh(); e != nil {
		listingCacheCounter.WithLabelValues("hit").Inc()
		return e.Data, nil
	}
	listingCacheCounter.WithLabelValues("miss").Inc()

	ch := c.group.DoChan("listing", func() (interface{}, error) {
		if e := c.fresh(); e != nil {
			return e.Data, nil
		}
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		data, err := c.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			c.mu.Lock()
			if c.gen == gen {
				c.entry = &CachedListing{Data: data, CapturedAt: c.clock()}
			}
			c.mu.Unlock()
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.PhoneNumber), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot returns the current entry, fresh or not, or nil.
func (c *ListingCache) Snapshot() *CachedListing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry
}

// Invalidate drops the cached listing. A fetch already in flight still
// answers its callers but is not cached, and later callers start a new one.
func (c *ListingCache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.gen++
	c.mu.Unlock()
	c.group.Forget("listing")
}

// TTL returns the configured time to live.
func (c *ListingCache) TTL() time.Duration {
	return c.ttl
}

func (c *ListingCache) fresh() *CachedListing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || c.clock().Sub(c.entry.CapturedAt) >= c.ttl {
		return nil
	}
	return c.entry
}
