// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import (
	"encoding/json"
	"fmt"

	"github.com/go-jose/go-jose/v4"
)

// requiredMembers are checked before handing the document to go-jose so a
// missing member is reported by name.
type requiredMembers struct {
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
	D   string `json:"d"`
}

// FromJWK parses an RSA private JSON Web Key. The "alg" and "kid" members are
// carried through unless overridden with WithAlgorithm or WithKeyID.
func FromJWK(data []byte, opt ...Option) (*PrivateKey, error) {
	const op = "keys.FromJWK"
	var m requiredMembers
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: not a JSON object: %w", op, ErrInvalidKey)
	}
	switch {
	case m.Kty == "":
		return nil, fmt.Errorf("%s: missing \"kty\": %w", op, ErrInvalidKey)
	case m.Kty != "RSA":
		return nil, fmt.Errorf("%s: kty %q: %w", op, m.Kty, ErrUnsupportedKeyType)
	case m.N == "":
		return nil, fmt.Errorf("%s: missing \"n\": %w", op, ErrInvalidKey)
	case m.E == "":
		return nil, fmt.Errorf("%s: missing \"e\": %w", op, ErrInvalidKey)
	case m.D == "":
		return nil, fmt.Errorf("%s: public key only, missing \"d\": %w", op, ErrInvalidKey)
	}

	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidKey, err)
	}
	rsaKey, err := asRSA(jwk.Key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opts := []Option{WithAlgorithm(Alg(jwk.Algorithm)), WithKeyID(jwk.KeyID)}
	return New(rsaKey, append(opts, opt...)...)
}
