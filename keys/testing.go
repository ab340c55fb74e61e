// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGenerateRSAKey will generate a 2048 bit test RSA key.
func TestGenerateRSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

// TestGenerateKey will generate a test PrivateKey with the given options.
func TestGenerateKey(t testing.TB, opt ...Option) *PrivateKey {
	t.Helper()
	k, err := New(TestGenerateRSAKey(t), opt...)
	require.NoError(t, err)
	return k
}

// TestPKCS1PEM encodes the key as an "RSA PRIVATE KEY" PEM block.
func TestPKCS1PEM(t testing.TB, k *rsa.PrivateKey) string {
	t.Helper()
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  pemTypePKCS1,
		Bytes: x509.MarshalPKCS1PrivateKey(k),
	}))
}

// TestPKCS8PEM encodes the key as a "PRIVATE KEY" PEM block.
func TestPKCS8PEM(t testing.TB, k interface{}) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(k)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  pemTypePKCS8,
		Bytes: der,
	}))
}

// TestJWK will return the JSON encoding of the key as a private JWK with the
// given kid and alg (either may be empty).
func TestJWK(t testing.TB, k *rsa.PrivateKey, kid string, alg Alg) string {
	t.Helper()
	pk, err := New(k, WithKeyID(kid), WithAlgorithm(alg))
	require.NoError(t, err)
	b, err := json.Marshal(pk.JWK())
	require.NoError(t, err)
	return string(b)
}
