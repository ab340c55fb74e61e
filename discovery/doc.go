// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
discovery fetches and caches OAuth 2.0 / OIDC authorization server metadata,
one Document per authority.

Each authority moves through Empty -> Fetching -> Cached -> Expired ->
Fetching and so on. A Cached document is returned without a network call
until it expires. Concurrent callers never start more than one fetch for the
same authority; they wait for the in-flight fetch, each bounded by its own
context. A failed fetch is logged, returned, and never cached.

A Cache is long lived: create one at startup and pass it to whatever needs
metadata.

	c, err := discovery.NewCache(discovery.WithLogger(logger))
	...
	doc, err := c.Get(ctx, "https://login.example.com/tenant")
	...
	tokenURL := doc.TokenEndpoint
*/
package discovery
