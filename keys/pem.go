// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// PEM block types understood by FromPEM.
const (
	pemTypePKCS1          = "RSA PRIVATE KEY"
	pemTypePKCS8          = "PRIVATE KEY"
	pemTypeEncryptedPKCS8 = "ENCRYPTED PRIVATE KEY"
	pemTypeEC             = "EC PRIVATE KEY"
)

// FromPEM parses the first private key block found in data. Other blocks, for
// example certificates of a bundle, are skipped. The returned key has neither
// an algorithm nor a key id. Error messages never include key material.
func FromPEM(data []byte, opt ...Option) (*PrivateKey, error) {
	const op = "keys.FromPEM"
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("%s: no private key PEM block found: %w", op, ErrInvalidKey)
		}
		switch block.Type {
		case pemTypePKCS1:
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%s: unable to parse PKCS#1 private key: %w", op, ErrInvalidKey)
			}
			return New(key, opt...)
		case pemTypePKCS8:
			raw, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%s: unable to parse PKCS#8 private key: %w", op, ErrInvalidKey)
			}
			key, ok := raw.(*rsa.PrivateKey)
			if !ok {
				return nil, fmt.Errorf("%s: PKCS#8 key is %T, not RSA: %w", op, raw, ErrUnsupportedKeyType)
			}
			return New(key, opt...)
		case pemTypeEncryptedPKCS8:
			return nil, fmt.Errorf("%s: encrypted private keys are not supported: %w", op, ErrInvalidKey)
		case pemTypeEC:
			return nil, fmt.Errorf("%s: EC private keys are not supported: %w", op, ErrUnsupportedKeyType)
		}
	}
}
