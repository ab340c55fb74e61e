// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	cahttp "github.com/hashicorp/cap-clientauth/sdk/http"
)

// Fetcher retrieves the metadata of an authority. Implementations fill in the
// endpoint fields of the Document; the Cache sets Authority, FetchedAt and
// ExpiresAt.
type Fetcher interface {
	Fetch(ctx context.Context, authority string) (Document, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, authority string) (Document, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, authority string) (Document, error) {
	return f(ctx, authority)
}

// OIDCFetcher fetches "/.well-known/openid-configuration" below the authority
// and, unless WithSkipIssuerCheck is used, requires the document's issuer to
// equal the authority.
type OIDCFetcher struct {
	client          *http.Client
	skipIssuerCheck bool
}

// ensure that OIDCFetcher implements the Fetcher interface
var _ Fetcher = (*OIDCFetcher)(nil)

// NewOIDCFetcher creates an OIDCFetcher.
//
// Supported options:
//   - WithHTTPClient
//   - WithProviderCA
//   - WithSkipIssuerCheck
func NewOIDCFetcher(opt ...Option) (*OIDCFetcher, error) {
	const op = "discovery.NewOIDCFetcher"
	opts := getFetcherOpts(opt...)
	return newOIDCFetcher(op, opts)
}

func newOIDCFetcher(op string, opts fetcherOptions) (*OIDCFetcher, error) {
	client := opts.withHTTPClient
	if client == nil {
		var err error
		client, err = cahttp.NewClient(opts.withProviderCA, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidParameter, err)
		}
	}
	return &OIDCFetcher{
		client:          client,
		skipIssuerCheck: opts.withSkipIssuerCheck,
	}, nil
}

// providerMetadata holds the discovery document members that go-oidc does
// not expose through its own accessors.
type providerMetadata struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserInfoEndpoint      string `json:"userinfo_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
	EndSessionEndpoint    string `json:"end_session_endpoint"`
}

// Fetch implements Fetcher.
func (f *OIDCFetcher) Fetch(ctx context.Context, authority string) (Document, error) {
	const op = "OIDCFetcher.Fetch"
	ctx = cahttp.ClientContext(ctx, f.client)
	if f.skipIssuerCheck {
		ctx = oidc.InsecureIssuerURLContext(ctx, authority)
	}
	provider, err := oidc.NewProvider(ctx, authority)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", op, err)
	}
	var md providerMetadata
	if err := provider.Claims(&md); err != nil {
		return Document{}, fmt.Errorf("%s: unable to decode metadata: %w", op, err)
	}
	if md.TokenEndpoint == "" {
		return Document{}, fmt.Errorf("%s: metadata for %s has no token_endpoint", op, authority)
	}
	return Document{
		Issuer:                md.Issuer,
		AuthorizationEndpoint: md.AuthorizationEndpoint,
		TokenEndpoint:         md.TokenEndpoint,
		UserInfoEndpoint:      md.UserInfoEndpoint,
		JWKSURI:               md.JWKSURI,
		EndSessionEndpoint:    md.EndSessionEndpoint,
	}, nil
}
