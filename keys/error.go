// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import "errors"

var (
	// ErrInvalidKey is returned for missing, malformed or inconsistent key
	// material.
	ErrInvalidKey = errors.New("invalid key")

	// ErrUnsupportedKeyType is returned when the key material is well formed
	// but is not an RSA key.
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrKeyMismatch is returned when a private key does not belong to the
	// certificate it was presented with.
	ErrKeyMismatch = errors.New("private key does not match certificate")

	// ErrUnsupportedAlgorithm is returned for signing algorithms other than
	// the RSA based JOSE algorithms.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)
