// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultCacheDuration is how long a document is cached unless
	// WithCacheDuration says otherwise.
	DefaultCacheDuration = 24 * time.Hour

	// DefaultFetchTimeout bounds a single metadata fetch.
	DefaultFetchTimeout = 30 * time.Second
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// cacheOptions is the set of available options for NewCache
type cacheOptions struct {
	withCacheDuration     time.Duration
	withAuthorityDuration map[string]time.Duration
	withFetcher           Fetcher
	withFetchTimeout      time.Duration
	withNow               func() time.Time
	withLogger            hclog.Logger
	fetcherOptions
}

func cacheDefaults() cacheOptions {
	return cacheOptions{
		withCacheDuration:     DefaultCacheDuration,
		withAuthorityDuration: map[string]time.Duration{},
		withFetchTimeout:      DefaultFetchTimeout,
		withNow:               time.Now,
		withLogger:            hclog.NewNullLogger(),
	}
}

func getCacheOpts(opt ...Option) cacheOptions {
	opts := cacheDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// fetcherOptions is the set of available options for NewOIDCFetcher
type fetcherOptions struct {
	withHTTPClient      *http.Client
	withProviderCA      string
	withSkipIssuerCheck bool
}

func getFetcherOpts(opt ...Option) fetcherOptions {
	var opts fetcherOptions
	ApplyOpts(&opts, opt...)
	return opts
}

// fetcherOpts reaches the embedded fetcher options of either options struct.
func fetcherOpts(o interface{}) *fetcherOptions {
	switch v := o.(type) {
	case *fetcherOptions:
		return v
	case *cacheOptions:
		return &v.fetcherOptions
	default:
		return nil
	}
}

// WithCacheDuration sets how long documents are cached. The default is 24
// hours.
func WithCacheDuration(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*cacheOptions); ok {
			o.withCacheDuration = d
		}
	}
}

// WithAuthorityCacheDuration overrides the cache duration for a single
// authority.
func WithAuthorityCacheDuration(authority string, d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*cacheOptions); ok {
			o.withAuthorityDuration[authority] = d
		}
	}
}

// WithFetcher replaces the default OIDCFetcher. WithHTTPClient,
// WithProviderCA and WithSkipIssuerCheck are ignored when it is used.
func WithFetcher(f Fetcher) Option {
	return func(o interface{}) {
		if o, ok := o.(*cacheOptions); ok {
			o.withFetcher = f
		}
	}
}

// WithFetchTimeout bounds each fetch. The default is 30 seconds.
func WithFetchTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*cacheOptions); ok {
			o.withFetchTimeout = d
		}
	}
}

// WithNow provides an optional clock for cache expiry.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*cacheOptions); ok && now != nil {
			o.withNow = now
		}
	}
}

// WithLogger provides an optional logger for the Cache.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*cacheOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithHTTPClient sets the client used to fetch metadata. It takes precedence
// over WithProviderCA.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if f := fetcherOpts(o); f != nil {
			f.withHTTPClient = c
		}
	}
}

// WithProviderCA sets a PEM encoded CA certificate to trust when fetching
// metadata, in place of the system roots.
func WithProviderCA(caPEM string) Option {
	return func(o interface{}) {
		if f := fetcherOpts(o); f != nil {
			f.withProviderCA = caPEM
		}
	}
}

// WithSkipIssuerCheck accepts documents whose issuer differs from the
// authority they were fetched from.
func WithSkipIssuerCheck() Option {
	return func(o interface{}) {
		if f := fetcherOpts(o); f != nil {
			f.withSkipIssuerCheck = true
		}
	}
}
