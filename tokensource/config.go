// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tokensource

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/cap-clientauth/discovery"
	"github.com/hashicorp/cap-clientauth/secret"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Config configures a token source.
type Config struct {
	// Authority is the authorization server, as accepted by discovery.Cache.
	Authority string

	// ClientID is the OAuth client id. It is the issuer and subject of the
	// client assertions.
	ClientID string

	// Secret is the client's signing key in any format secret.Parse accepts.
	Secret secret.Secret

	// Scopes are requested with every token.
	Scopes []string

	// Cache supplies the authority's issuer and token endpoint.
	Cache *discovery.Cache

	// Resolver resolves Secret. Optional; the default resolver cannot
	// resolve certificate thumbprints.
	Resolver *secret.Resolver

	// AssertionExpiry is the lifetime of each client assertion. Zero selects
	// clientassertion.DefaultExpiry.
	AssertionExpiry time.Duration

	// DPoP requests DPoP bound tokens.
	DPoP bool

	// HTTPClient sends token requests. Optional; defaults to a pooled
	// go-cleanhttp client using the system roots.
	HTTPClient *http.Client

	// Logger is optional.
	Logger hclog.Logger
}

// Validate the Config, reporting every problem at once.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.Authority == "" {
		result = multierror.Append(result, fmt.Errorf("authority is empty: %w", ErrInvalidParameter))
	} else if _, err := discovery.CanonicalAuthority(c.Authority); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: %w", ErrInvalidParameter, err))
	}
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("client id is empty: %w", ErrInvalidParameter))
	}
	if c.Secret == "" {
		result = multierror.Append(result, fmt.Errorf("secret is empty: %w", ErrInvalidParameter))
	}
	if c.Cache == nil {
		result = multierror.Append(result, fmt.Errorf("discovery cache is nil: %w", ErrNilParameter))
	}
	if c.AssertionExpiry < 0 {
		result = multierror.Append(result, fmt.Errorf("assertion expiry %s is negative: %w", c.AssertionExpiry, ErrInvalidParameter))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
