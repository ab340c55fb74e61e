// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"
)

// Cache holds one Document per authority. It is safe for concurrent use.
type Cache struct {
	fetcher      Fetcher
	duration     time.Duration
	durations    map[string]time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       hclog.Logger

	mu      sync.RWMutex
	entries map[string]Document

	flights singleflight.Group
}

// NewCache creates a Cache. Without WithFetcher, documents are fetched with
// an OIDCFetcher.
//
// Supported options:
//   - WithCacheDuration
//   - WithAuthorityCacheDuration
//   - WithFetcher
//   - WithFetchTimeout
//   - WithNow
//   - WithLogger
//   - WithHTTPClient
//   - WithProviderCA
//   - WithSkipIssuerCheck
func NewCache(opt ...Option) (*Cache, error) {
	const op = "discovery.NewCache"
	opts := getCacheOpts(opt...)
	switch {
	case opts.withCacheDuration <= 0:
		return nil, fmt.Errorf("%s: cache duration must be positive: %w", op, ErrInvalidParameter)
	case opts.withFetchTimeout <= 0:
		return nil, fmt.Errorf("%s: fetch timeout must be positive: %w", op, ErrInvalidParameter)
	}
	durations := make(map[string]time.Duration, len(opts.withAuthorityDuration))
	for authority, d := range opts.withAuthorityDuration {
		key, err := CanonicalAuthority(authority)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidParameter, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%s: cache duration for %s must be positive: %w", op, key, ErrInvalidParameter)
		}
		durations[key] = d
	}
	fetcher := opts.withFetcher
	if fetcher == nil {
		f, err := newOIDCFetcher(op, opts.fetcherOptions)
		if err != nil {
			return nil, err
		}
		fetcher = f
	}
	return &Cache{
		fetcher:      fetcher,
		duration:     opts.withCacheDuration,
		durations:    durations,
		fetchTimeout: opts.withFetchTimeout,
		now:          opts.withNow,
		logger:       opts.withLogger,
		entries:      map[string]Document{},
	}, nil
}

// Get returns the document for authority, fetching it when it is not cached
// or has expired. ctx bounds how long the caller waits; a fetch shared with
// other callers keeps running when one of them gives up.
func (c *Cache) Get(ctx context.Context, authority string) (Document, error) {
	const op = "Cache.Get"
	key, err := CanonicalAuthority(authority)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", op, err)
	}
	if doc, ok := c.cached(key); ok {
		return doc, nil
	}

	ch := c.flights.DoChan(key, func() (interface{}, error) {
		return c.fetch(ctx, key, authority)
	})
	select {
	case <-ctx.Done():
		return Document{}, fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Document{}, fmt.Errorf("%s: %w", op, res.Err)
		}
		return res.Val.(Document), nil
	}
}

// Invalidate drops the cached document for authority, if any.
func (c *Cache) Invalidate(authority string) {
	key, err := CanonicalAuthority(authority)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) cached(key string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.entries[key]
	if !ok || doc.Expired(c.now()) {
		return Document{}, false
	}
	return doc, true
}

// fetch runs at most once per key at a time.
func (c *Cache) fetch(ctx context.Context, key, authority string) (Document, error) {
	const op = "Cache.fetch"
	// a flight that finished just before this one started may have stored a
	// fresh document
	if doc, ok := c.cached(key); ok {
		return doc, nil
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	c.logger.Debug("fetching discovery document", "authority", key)
	doc, err := c.fetcher.Fetch(fetchCtx, authority)
	if err != nil {
		c.logger.Error("discovery document fetch failed", "authority", key, "error", err)
		return Document{}, fmt.Errorf("%s: %w: %w", op, ErrDiscoveryFetchFailed, err)
	}

	now := c.now()
	doc.Authority = key
	doc.FetchedAt = now
	doc.ExpiresAt = now.Add(c.durationFor(key))

	c.mu.Lock()
	c.entries[key] = doc
	c.mu.Unlock()
	c.logger.Debug("discovery document cached", "authority", key, "expires_at", doc.ExpiresAt)
	return doc, nil
}

func (c *Cache) durationFor(key string) time.Duration {
	if d, ok := c.durations[key]; ok {
		return d
	}
	return c.duration
}
