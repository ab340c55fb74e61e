// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"fmt"
	"time"

	"github.com/hashicorp/cap-clientauth/keys"
)

// Option configures the JWT
type Option func(*JWT) error

// WithExpiry sets how long the assertion is valid for. The default is 10
// seconds; negative values are rejected with ErrInvalidExpiration.
func WithExpiry(d time.Duration) Option {
	const op = "WithExpiry"
	return func(j *JWT) error {
		if d < 0 {
			return fmt.Errorf("%s: %w: %s is negative", op, ErrInvalidExpiration, d)
		}
		j.expiry = d
		return nil
	}
}

// WithKeyID sets the "kid" header that authorization servers use to look up
// the public key to check the signed JWT. It overrides the key's own id; an
// empty keyID leaves the key's id in place.
func WithKeyID(keyID string) Option {
	return func(j *JWT) error {
		if keyID == "" {
			return nil
		}
		j.headers["kid"] = keyID
		return nil
	}
}

// WithAlgorithm overrides the signing algorithm of the key.
func WithAlgorithm(alg keys.Alg) Option {
	const op = "WithAlgorithm"
	return func(j *JWT) error {
		if err := alg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		j.alg = alg
		return nil
	}
}

// WithHeaders sets extra JWT headers, like x5t. The "alg" and "typ" headers
// cannot be overridden.
func WithHeaders(h map[string]string) Option {
	const op = "WithHeaders"
	return func(j *JWT) error {
		for k, v := range h {
			switch k {
			case "alg", "typ":
				return fmt.Errorf("%s: %w: %q", op, ErrReservedHeader, k)
			}
			j.headers[k] = v
		}
		return nil
	}
}
