// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/cap-clientauth/keys"
	"github.com/hashicorp/go-hclog"
)

// Provider finds certificates in a Store and validates them against its
// clock.
type Provider struct {
	store    Store
	location Location
	now      func() time.Time
	logger   hclog.Logger
}

// NewProvider creates a Provider for store.
//
// Supported options:
//   - WithLocation
//   - WithNow
//   - WithLogger
func NewProvider(store Store, opt ...Option) (*Provider, error) {
	const op = "certstore.NewProvider"
	if store == nil {
		return nil, fmt.Errorf("%s: store is nil: %w", op, ErrNilParameter)
	}
	opts := getProviderOpts(opt...)
	return &Provider{
		store:    store,
		location: opts.withLocation,
		now:      opts.withNow,
		logger:   opts.withLogger,
	}, nil
}

// Location returns the store location searched by the provider.
func (p *Provider) Location() Location { return p.location }

// Find looks up and validates the certificate identified by thumbprint. The
// caller owns the returned Handle and must Close it.
func (p *Provider) Find(ctx context.Context, thumbprint string) (*Handle, error) {
	const op = "Provider.Find"
	tp := NormalizeThumbprint(thumbprint)
	if tp == "" {
		return nil, fmt.Errorf("%s: thumbprint is empty: %w", op, ErrInvalidParameter)
	}
	h, err := p.store.Lookup(ctx, p.location, tp)
	if err != nil {
		if errors.Is(err, ErrCertificateNotFound) {
			p.logger.Debug("certificate not found", "thumbprint", tp, "location", p.location.String())
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := Validate(h, p.now()); err != nil {
		p.logger.Warn("certificate rejected", "thumbprint", tp, "location", p.location.String(), "error", err)
		if cerr := h.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

// PrivateKey finds the certificate identified by thumbprint and converts its
// private key. The key id of the result is the certificate thumbprint. The
// handle is closed before returning, on success and failure alike.
func (p *Provider) PrivateKey(ctx context.Context, thumbprint string) (k *keys.PrivateKey, retErr error) {
	const op = "Provider.PrivateKey"
	h, err := p.Find(ctx, thumbprint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := h.Close(); err != nil && retErr == nil {
			k, retErr = nil, fmt.Errorf("%s: %w", op, err)
		}
	}()

	priv, err := h.PrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	k, err = keys.FromCertificate(h.Certificate, priv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return k, nil
}

// Validate checks h against now. Expiry is checked first, then the start of
// the validity period, then the presence of a private key.
func Validate(h *Handle, now time.Time) error {
	const op = "certstore.Validate"
	switch {
	case h == nil:
		return fmt.Errorf("%s: handle is nil: %w", op, ErrNilParameter)
	case now.After(h.NotAfter):
		return fmt.Errorf("%s: %s expired at %s: %w", op, h.Thumbprint, h.NotAfter.UTC().Format(time.RFC3339), ErrCertificateExpired)
	case now.Before(h.NotBefore):
		return fmt.Errorf("%s: %s is valid from %s: %w", op, h.Thumbprint, h.NotBefore.UTC().Format(time.RFC3339), ErrCertificateNotYetValid)
	case !h.HasPrivateKey():
		return fmt.Errorf("%s: %s: %w", op, h.Thumbprint, ErrNoPrivateKeyAvailable)
	}
	return nil
}
