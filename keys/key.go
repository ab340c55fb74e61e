// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import (
	"crypto/rsa"
	"fmt"

	"github.com/go-jose/go-jose/v4"
)

// RedactedPrivateKey is the redacted string for a private key.
const RedactedPrivateKey = "[REDACTED: private key]"

// PrivateKey is a normalized RSA private key along with the algorithm and key
// id it should be used with.
type PrivateKey struct {
	key       *rsa.PrivateKey
	algorithm Alg
	keyID     string
}

// New validates key and wraps it.
//
// Supported options:
//   - WithAlgorithm
//   - WithKeyID
func New(key *rsa.PrivateKey, opt ...Option) (*PrivateKey, error) {
	const op = "keys.New"
	if key == nil {
		return nil, fmt.Errorf("%s: rsa key is nil: %w", op, ErrInvalidKey)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidKey, err)
	}
	key.Precompute()

	opts := getKeyOpts(opt...)
	if opts.withAlgorithm != "" {
		if err := opts.withAlgorithm.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return &PrivateKey{
		key:       key,
		algorithm: opts.withAlgorithm,
		keyID:     opts.withKeyID,
	}, nil
}

// RSA returns the underlying key. It must be treated as read-only.
func (k *PrivateKey) RSA() *rsa.PrivateKey { return k.key }

// Public returns the public half of the key.
func (k *PrivateKey) Public() *rsa.PublicKey { return &k.key.PublicKey }

// Algorithm returns the algorithm recorded for the key, which may be empty.
func (k *PrivateKey) Algorithm() Alg { return k.algorithm }

// KeyID returns the key id, which may be empty.
func (k *PrivateKey) KeyID() string { return k.keyID }

// JWK exports the complete key, private members included.
func (k *PrivateKey) JWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       k.key,
		KeyID:     k.keyID,
		Algorithm: string(k.algorithm),
	}
}

// PublicJWK exports the public members only (kty, n, e).
func (k *PrivateKey) PublicJWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key: k.Public(),
	}
}

// String will redact the key
func (k *PrivateKey) String() string { return RedactedPrivateKey }

// GoString will redact the key
func (k *PrivateKey) GoString() string { return RedactedPrivateKey }
