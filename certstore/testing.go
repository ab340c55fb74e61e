// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestGenerateCertificate will generate a self-signed test certificate for
// priv, valid between notBefore and notAfter.
func TestGenerateCertificate(t testing.TB, priv crypto.Signer, notBefore, notAfter time.Time) *x509.Certificate {
	t.Helper()
	require := require.New(t)

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	require.NoError(err)

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"Acme Co"},
			CommonName:   "client-assertion",
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, priv.Public(), priv)
	require.NoError(err)
	cert, err := x509.ParseCertificate(derBytes)
	require.NoError(err)
	return cert
}

// TestWritePEM writes cert, and priv when it is not nil, to dir/name as a
// PEM bundle and returns the file path.
func TestWritePEM(t testing.TB, dir, name string, cert *x509.Certificate, priv crypto.PrivateKey) string {
	t.Helper()
	require := require.New(t)
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	if priv != nil {
		der, err := x509.MarshalPKCS8PrivateKey(priv)
		require.NoError(err)
		data = append(data, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})...)
	}
	path := filepath.Join(dir, name)
	require.NoError(os.WriteFile(path, data, 0o600))
	return path
}
