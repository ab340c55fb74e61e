// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // certificate thumbprints are SHA-1 by convention
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"
)

// Thumbprint returns the certificate thumbprint: the uppercase hex SHA-1
// digest of its DER encoding.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw) //nolint:gosec
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// FromCertificate builds a PrivateKey from a certificate and its private key.
// The key id defaults to the certificate thumbprint.
func FromCertificate(cert *x509.Certificate, priv crypto.PrivateKey, opt ...Option) (*PrivateKey, error) {
	const op = "keys.FromCertificate"
	if cert == nil {
		return nil, fmt.Errorf("%s: certificate is nil: %w", op, ErrInvalidKey)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s: certificate key is %T, not RSA: %w", op, cert.PublicKey, ErrUnsupportedKeyType)
	}
	key, err := asRSA(priv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !pub.Equal(&key.PublicKey) {
		return nil, fmt.Errorf("%s: %w", op, ErrKeyMismatch)
	}
	return New(key, append([]Option{WithKeyID(Thumbprint(cert))}, opt...)...)
}

func asRSA(priv crypto.PrivateKey) (*rsa.PrivateKey, error) {
	switch k := priv.(type) {
	case nil:
		return nil, fmt.Errorf("private key is nil: %w", ErrInvalidKey)
	case *rsa.PrivateKey:
		return k, nil
	case *rsa.PublicKey:
		return nil, fmt.Errorf("public key only: %w", ErrInvalidKey)
	default:
		return nil, fmt.Errorf("key is %T, not RSA: %w", priv, ErrUnsupportedKeyType)
	}
}
