// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import "fmt"

// Alg represents an RSA based JOSE signing algorithm.
type Alg string

// JOSE asymmetric signing algorithm values as defined by RFC 7518.
// See: https://tools.ietf.org/html/rfc7518#section-3.1
const (
	RS256 Alg = "RS256" // RSASSA-PKCS-v1.5 using SHA-256
	RS384 Alg = "RS384" // RSASSA-PKCS-v1.5 using SHA-384
	RS512 Alg = "RS512" // RSASSA-PKCS-v1.5 using SHA-512
	PS256 Alg = "PS256" // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 Alg = "PS384" // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 Alg = "PS512" // RSASSA-PSS using SHA512 and MGF1-SHA512
)

// DefaultAlgorithm is used when neither the key nor the caller name one.
const DefaultAlgorithm = RS256

var supportedAlgorithms = map[Alg]bool{
	RS256: true,
	RS384: true,
	RS512: true,
	PS256: true,
	PS384: true,
	PS512: true,
}

// Validate checks that a is one of the supported RSA algorithms.
func (a Alg) Validate() error {
	const op = "Alg.Validate"
	if !supportedAlgorithms[a] {
		return fmt.Errorf("%s: %w %q for RSA key", op, ErrUnsupportedAlgorithm, string(a))
	}
	return nil
}
