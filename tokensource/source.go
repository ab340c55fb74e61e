// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tokensource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/hashicorp/cap-clientauth/clientassertion"
	"github.com/hashicorp/cap-clientauth/dpop"
	"github.com/hashicorp/cap-clientauth/keys"
	"github.com/hashicorp/cap-clientauth/secret"
	cahttp "github.com/hashicorp/cap-clientauth/sdk/http"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Source requests a new token on every call. Use New for a source that
// reuses tokens until they expire.
type Source struct {
	cfg      Config
	resolver *secret.Resolver
	client   *http.Client
	logger   hclog.Logger

	mu        sync.Mutex
	transport *dpop.Transport
	dpopKey   *keys.PrivateKey
}

// ensure that Source implements the oauth2.TokenSource interface
var _ oauth2.TokenSource = (*Source)(nil)

// New returns a token source that reuses a token until it expires.
func New(cfg *Config) (oauth2.TokenSource, error) {
	const op = "tokensource.New"
	s, err := NewSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return oauth2.ReuseTokenSource(nil, s), nil
}

// NewSource validates cfg and returns a Source.
func NewSource(cfg *Config) (*Source, error) {
	const op = "tokensource.NewSource"
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s := &Source{
		cfg:      *cfg,
		resolver: cfg.Resolver,
		client:   cfg.HTTPClient,
		logger:   cfg.Logger,
	}
	if s.resolver == nil {
		s.resolver = secret.NewResolver()
	}
	if s.client == nil {
		s.client = cleanhttp.DefaultPooledClient()
	}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	return s, nil
}

// Token implements oauth2.TokenSource.
func (s *Source) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

// TokenContext requests a token, bounded by ctx.
func (s *Source) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	const op = "Source.TokenContext"
	doc, err := s.cfg.Cache.Get(ctx, s.cfg.Authority)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	key, err := s.resolver.Resolve(ctx, string(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var opts []clientassertion.Option
	if s.cfg.AssertionExpiry > 0 {
		opts = append(opts, clientassertion.WithExpiry(s.cfg.AssertionExpiry))
	}
	a, err := clientassertion.Create(doc.Issuer, s.cfg.ClientID, key, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cc := clientcredentials.Config{
		ClientID:  s.cfg.ClientID,
		TokenURL:  doc.TokenEndpoint,
		Scopes:    s.cfg.Scopes,
		AuthStyle: oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"client_assertion_type": {a.Type},
			"client_assertion":      {a.Value},
		},
	}
	client := s.client
	if s.cfg.DPoP {
		client, err = s.dpopClient(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.logger.Debug("requesting token", "authority", doc.Authority, "client_id", s.cfg.ClientID, "dpop", s.cfg.DPoP)
	tok, err := cc.Token(cahttp.ClientContext(ctx, client))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tok, nil
}

// dpopClient wraps the configured client in a DPoP transport. The transport,
// and the nonces it has collected, is kept for as long as the key does not
// change.
func (s *Source) dpopClient(key *keys.PrivateKey) (*http.Client, error) {
	const op = "dpopClient"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil || !s.dpopKey.RSA().Equal(key.RSA()) {
		base := s.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		t, err := dpop.NewTransport(key, dpop.WithBase(base), dpop.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.transport, s.dpopKey = t, key
	}
	return &http.Client{
		Transport: s.transport,
		Timeout:   s.client.Timeout,
	}, nil
}
