// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secret

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/cap-clientauth/certstore"
	"github.com/hashicorp/cap-clientauth/keys"
	"github.com/hashicorp/go-hclog"
)

// CertificateProvider returns the validated private key of the certificate
// identified by thumbprint. *certstore.Provider implements it.
type CertificateProvider interface {
	PrivateKey(ctx context.Context, thumbprint string) (*keys.PrivateKey, error)
}

// ensure that certstore.Provider implements the CertificateProvider interface
var _ CertificateProvider = (*certstore.Provider)(nil)

// Resolver resolves secrets into private keys. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	provider CertificateProvider
	logger   hclog.Logger
}

// NewResolver creates a Resolver.
//
// Supported options:
//   - WithCertificateProvider
//   - WithLogger
func NewResolver(opt ...Option) *Resolver {
	opts := getResolverOpts(opt...)
	return &Resolver{
		provider: opts.withProvider,
		logger:   opts.withLogger,
	}
}

// Resolve detects the format of raw and resolves it into a private key.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*keys.PrivateKey, error) {
	const op = "Resolver.Resolve"
	in, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	k, err := r.ResolveInput(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return k, nil
}

// ResolveFile reads a secret from path and resolves it.
func (r *Resolver) ResolveFile(ctx context.Context, path string) (*keys.PrivateKey, error) {
	const op = "Resolver.ResolveFile"
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read secret file: %w", op, err)
	}
	k, err := r.Resolve(ctx, string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return k, nil
}

// ResolveInput resolves an already parsed secret.
func (r *Resolver) ResolveInput(ctx context.Context, in Input) (*keys.PrivateKey, error) {
	const op = "Resolver.ResolveInput"
	r.logger.Debug("resolving secret", "format", in.Kind().String())
	switch in.Kind() {
	case KindJWK, KindBase64:
		k, err := keys.FromJWK([]byte(in.Value()))
		if err != nil {
			return nil, fmt.Errorf("%s: %s secret: %w: %w", op, in.Kind(), ErrInvalidInput, err)
		}
		return k, nil
	case KindPEM:
		k, err := keys.FromPEM([]byte(in.Value()))
		if err != nil {
			return nil, fmt.Errorf("%s: pem secret: %w: %w", op, ErrInvalidInput, err)
		}
		return k, nil
	case KindThumbprint:
		if r.provider == nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrNoCertificateProvider, certstore.ErrCertificateNotFound)
		}
		k, err := r.provider.PrivateKey(ctx, in.Value())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return k, nil
	default:
		return nil, fmt.Errorf("%s: unknown secret format: %w", op, ErrInvalidInput)
	}
}
