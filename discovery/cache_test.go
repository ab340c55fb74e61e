// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingFetcher returns a document for any authority and counts fetches.
type countingFetcher struct {
	calls atomic.Int32
	err   error
	gate  chan struct{}
}

func (f *countingFetcher) Fetch(ctx context.Context, authority string) (Document, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return Document{}, ctx.Err()
		}
	}
	if f.err != nil {
		return Document{}, f.err
	}
	return Document{
		Issuer:        authority,
		TokenEndpoint: authority + "/token",
	}, nil
}

func TestNewCache(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		opts      []Option
		wantErr   bool
		wantIsErr error
	}{
		{name: "defaults"},
		{name: "zero-duration", opts: []Option{WithCacheDuration(0)}, wantErr: true, wantIsErr: ErrInvalidParameter},
		{name: "zero-timeout", opts: []Option{WithFetchTimeout(0)}, wantErr: true, wantIsErr: ErrInvalidParameter},
		{name: "bad-authority-duration", opts: []Option{WithAuthorityCacheDuration("not a url", time.Hour)}, wantErr: true, wantIsErr: ErrMalformedAuthority},
		{name: "negative-authority-duration", opts: []Option{WithAuthorityCacheDuration("https://a", -time.Hour)}, wantErr: true, wantIsErr: ErrInvalidParameter},
		{name: "bad-ca", opts: []Option{WithProviderCA("not a pem")}, wantErr: true, wantIsErr: ErrInvalidParameter},
		{name: "bad-ca-ignored-with-fetcher", opts: []Option{WithProviderCA("not a pem"), WithFetcher(&countingFetcher{})}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			c, err := NewCache(tt.opts...)
			if tt.wantErr {
				require.Error(err)
				assert.Nil(c)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.NotNil(c.fetcher)
		})
	}
}

func TestCache_Get(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	clock := &testClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	f := &countingFetcher{}
	c, err := NewCache(WithFetcher(f), WithNow(clock.Now), WithCacheDuration(time.Hour))
	require.NoError(err)

	doc, err := c.Get(ctx, "https://A")
	require.NoError(err)
	assert.Equal(int32(1), f.calls.Load())
	assert.Equal("https://a", doc.Authority)
	assert.Equal("https://A/token", doc.TokenEndpoint)
	assert.Equal(clock.Now(), doc.FetchedAt)
	assert.Equal(clock.Now().Add(time.Hour), doc.ExpiresAt)

	clock.Advance(59 * time.Minute)
	again, err := c.Get(ctx, "https://a/")
	require.NoError(err)
	assert.Equal(int32(1), f.calls.Load(), "cached document must not be fetched")
	assert.Equal(doc, again)

	clock.Advance(time.Minute)
	refreshed, err := c.Get(ctx, "https://A")
	require.NoError(err)
	assert.Equal(int32(2), f.calls.Load(), "expired document must be fetched once")
	assert.True(refreshed.FetchedAt.After(doc.FetchedAt))

	// the document returned earlier is a value and is unchanged
	assert.Equal(clock.Now().Add(-time.Hour), doc.FetchedAt)

	c.Invalidate("https://A")
	_, err = c.Get(ctx, "https://A")
	require.NoError(err)
	assert.Equal(int32(3), f.calls.Load())
}

func TestCache_authorityDuration(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	clock := &testClock{now: time.Now()}
	f := &countingFetcher{}
	c, err := NewCache(WithFetcher(f), WithNow(clock.Now), WithCacheDuration(time.Hour), WithAuthorityCacheDuration("https://short.example.com/", time.Minute))
	require.NoError(err)

	short, err := c.Get(context.Background(), "https://short.example.com")
	require.NoError(err)
	assert.Equal(time.Minute, short.ExpiresAt.Sub(short.FetchedAt))

	long, err := c.Get(context.Background(), "https://long.example.com")
	require.NoError(err)
	assert.Equal(time.Hour, long.ExpiresAt.Sub(long.FetchedAt))
}

func TestCache_failuresAreNotCached(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	f := &countingFetcher{err: errors.New("connection refused")}
	c, err := NewCache(WithFetcher(f))
	require.NoError(err)

	for i := 1; i <= 3; i++ {
		_, err := c.Get(context.Background(), "https://a")
		require.Error(err)
		assert.ErrorIs(err, ErrDiscoveryFetchFailed)
		assert.ErrorContains(err, "connection refused")
		assert.Equal(int32(i), f.calls.Load())
	}

	f.err = nil
	_, err = c.Get(context.Background(), "https://a")
	require.NoError(err)
}

func TestCache_malformedAuthority(t *testing.T) {
	t.Parallel()
	f := &countingFetcher{}
	c, err := NewCache(WithFetcher(f))
	require.NoError(t, err)
	for _, authority := range []string{"", "   ", "not a url", "ftp://a", "https://", "https://a?x=1", "https://a#frag", "https://user@a", "/relative"} {
		_, err := c.Get(context.Background(), authority)
		assert.ErrorIs(t, err, ErrMalformedAuthority, authority)
		assert.NotErrorIs(t, err, ErrDiscoveryFetchFailed, authority)
	}
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestCache_concurrentGet(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	f := &countingFetcher{gate: make(chan struct{})}
	c, err := NewCache(WithFetcher(f))
	require.NoError(err)

	const callers = 50
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	docs := make(chan Document, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := c.Get(context.Background(), "https://a")
			if err != nil {
				errs <- err
				return
			}
			docs <- doc
		}()
	}
	require.Eventually(func() bool { return f.calls.Load() == 1 }, 5*time.Second, time.Millisecond)
	// let late callers reach the in-flight fetch before it completes
	time.Sleep(50 * time.Millisecond)
	close(f.gate)
	wg.Wait()
	close(errs)
	close(docs)

	for err := range errs {
		assert.NoError(err)
	}
	assert.Len(docs, callers)
	assert.Equal(int32(1), f.calls.Load())
}

func TestCache_callerCancellation(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	f := &countingFetcher{gate: make(chan struct{})}
	c, err := NewCache(WithFetcher(f))
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "https://a")
		done <- err
	}()
	require.Eventually(func() bool { return f.calls.Load() == 1 }, 5*time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(<-done, context.Canceled)

	// the shared fetch outlives the caller that started it
	close(f.gate)
	require.Eventually(func() bool {
		_, ok := c.cached("https://a")
		return ok
	}, 5*time.Second, time.Millisecond)
	_, err = c.Get(context.Background(), "https://a")
	require.NoError(err)
	assert.Equal(int32(1), f.calls.Load())
}

func TestCache_fetchTimeout(t *testing.T) {
	t.Parallel()
	f := &countingFetcher{gate: make(chan struct{})}
	c, err := NewCache(WithFetcher(f), WithFetchTimeout(20*time.Millisecond))
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "https://a")
	assert.ErrorIs(t, err, ErrDiscoveryFetchFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCanonicalAuthority(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://login.example.com", want: "https://login.example.com"},
		{in: " HTTPS://Login.Example.COM/Tenant/ ", want: "https://login.example.com/Tenant"},
		{in: "https://login.example.com:8443/t", want: "https://login.example.com:8443/t"},
		{in: "https://bücher.example", want: "https://xn--bcher-kva.example"},
		{in: "http://127.0.0.1:8080/", want: "http://127.0.0.1:8080"},
		{in: "https://[::1]/realm", want: "https://[::1]/realm"},
		{in: "https://[::1]:9443", want: "https://[::1]:9443"},
	}
	for _, tt := range tests {
		got, err := CanonicalAuthority(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)

		again, err := CanonicalAuthority(got)
		require.NoError(t, err)
		assert.Equal(t, got, again, "canonical form must be stable")
	}
}
