// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	k := TestGenerateRSAKey(t)
	inconsistent := TestGenerateRSAKey(t)
	inconsistent.D = big.NewInt(3)

	tests := []struct {
		name      string
		key       *rsa.PrivateKey
		opts      []Option
		wantAlg   Alg
		wantKid   string
		wantErr   bool
		wantIsErr error
	}{
		{
			name: "valid",
			key:  k,
		},
		{
			name:    "valid-with-options",
			key:     k,
			opts:    []Option{WithAlgorithm(PS256), WithKeyID("kid-1")},
			wantAlg: PS256,
			wantKid: "kid-1",
		},
		{
			name:      "nil-key",
			wantErr:   true,
			wantIsErr: ErrInvalidKey,
		},
		{
			name:      "inconsistent-key",
			key:       inconsistent,
			wantErr:   true,
			wantIsErr: ErrInvalidKey,
		},
		{
			name:      "unsupported-alg",
			key:       k,
			opts:      []Option{WithAlgorithm("ES256")},
			wantErr:   true,
			wantIsErr: ErrUnsupportedAlgorithm,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := New(tt.key, tt.opts...)
			if tt.wantErr {
				require.Error(err)
				assert.Nil(got)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.Equal(tt.wantAlg, got.Algorithm())
			assert.Equal(tt.wantKid, got.KeyID())
			assert.Equal(&tt.key.PublicKey, got.Public())
		})
	}
}

func TestFromPEM(t *testing.T) {
	t.Parallel()
	k := TestGenerateRSAKey(t)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ecDER, err := x509.MarshalECPrivateKey(ecKey)
	require.NoError(t, err)
	cert, _ := testSelfSigned(t, k)
	certPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))

	tests := []struct {
		name      string
		data      string
		wantErr   bool
		wantIsErr error
	}{
		{
			name: "pkcs1",
			data: TestPKCS1PEM(t, k),
		},
		{
			name: "pkcs8",
			data: TestPKCS8PEM(t, k),
		},
		{
			name: "bundle-certificate-first",
			data: certPEM + TestPKCS8PEM(t, k),
		},
		{
			name:      "pkcs8-ec",
			data:      TestPKCS8PEM(t, ecKey),
			wantErr:   true,
			wantIsErr: ErrUnsupportedKeyType,
		},
		{
			name:      "ec-block",
			data:      string(pem.EncodeToMemory(&pem.Block{Type: pemTypeEC, Bytes: ecDER})),
			wantErr:   true,
			wantIsErr: ErrUnsupportedKeyType,
		},
		{
			name:      "encrypted",
			data:      string(pem.EncodeToMemory(&pem.Block{Type: pemTypeEncryptedPKCS8, Bytes: []byte("opaque")})),
			wantErr:   true,
			wantIsErr: ErrInvalidKey,
		},
		{
			name:      "corrupt-pkcs1",
			data:      string(pem.EncodeToMemory(&pem.Block{Type: pemTypePKCS1, Bytes: []byte("corrupt")})),
			wantErr:   true,
			wantIsErr: ErrInvalidKey,
		},
		{
			name:      "certificate-only",
			data:      certPEM,
			wantErr:   true,
			wantIsErr: ErrInvalidKey,
		},
		{
			name:      "not-pem",
			data:      "-----BEGIN nonsense",
			wantErr:   true,
			wantIsErr: ErrInvalidKey,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := FromPEM([]byte(tt.data))
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				assert.NotContains(err.Error(), "corrupt")
				return
			}
			require.NoError(err)
			assert.Empty(got.KeyID())
			assert.Empty(got.Algorithm())
			assert.True(k.Equal(got.RSA()))
		})
	}
}

func TestFromJWK(t *testing.T) {
	t.Parallel()
	k := TestGenerateRSAKey(t)

	t.Run("round-trip", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		in := TestJWK(t, k, "abc", RS384)
		got, err := FromJWK([]byte(in))
		require.NoError(err)
		assert.Equal("abc", got.KeyID())
		assert.Equal(RS384, got.Algorithm())

		out, err := json.Marshal(got.JWK())
		require.NoError(err)

		var want, have map[string]interface{}
		require.NoError(json.Unmarshal([]byte(in), &want))
		require.NoError(json.Unmarshal(out, &have))
		for _, member := range []string{"kty", "n", "e", "d"} {
			assert.Equalf(want[member], have[member], "member %q", member)
		}
	})

	t.Run("options-override", func(t *testing.T) {
		got, err := FromJWK([]byte(TestJWK(t, k, "abc", "")), WithKeyID("override"))
		require.NoError(t, err)
		assert.Equal(t, "override", got.KeyID())
	})

	full := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(TestJWK(t, k, "", "")), &full))
	without := func(member string) string {
		m := map[string]interface{}{}
		for k, v := range full {
			if k != member {
				m[k] = v
			}
		}
		b, err := json.Marshal(m)
		require.NoError(t, err)
		return string(b)
	}

	tests := []struct {
		name      string
		data      string
		wantIsErr error
	}{
		{name: "missing-kty", data: without("kty"), wantIsErr: ErrInvalidKey},
		{name: "missing-n", data: without("n"), wantIsErr: ErrInvalidKey},
		{name: "missing-e", data: without("e"), wantIsErr: ErrInvalidKey},
		{name: "public-only", data: without("d"), wantIsErr: ErrInvalidKey},
		{name: "missing-p", data: without("p"), wantIsErr: ErrInvalidKey},
		{name: "ec-kty", data: `{"kty":"EC","crv":"P-256","x":"a","y":"b","d":"c"}`, wantIsErr: ErrUnsupportedKeyType},
		{name: "not-json", data: `{"kty":`, wantIsErr: ErrInvalidKey},
		{name: "json-array", data: `[1,2,3]`, wantIsErr: ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJWK([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Truef(t, errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
		})
	}
}

func TestFromCertificate(t *testing.T) {
	t.Parallel()
	k := TestGenerateRSAKey(t)
	other := TestGenerateRSAKey(t)
	cert, _ := testSelfSigned(t, k)

	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := FromCertificate(cert, k)
		require.NoError(err)
		assert.Equal(Thumbprint(cert), got.KeyID())
		assert.Len(got.KeyID(), 40)
		assert.Empty(got.Algorithm())
	})
	t.Run("mismatch", func(t *testing.T) {
		_, err := FromCertificate(cert, other)
		assert.ErrorIs(t, err, ErrKeyMismatch)
	})
	t.Run("nil-certificate", func(t *testing.T) {
		_, err := FromCertificate(nil, k)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
	t.Run("nil-key", func(t *testing.T) {
		_, err := FromCertificate(cert, nil)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
	t.Run("public-key", func(t *testing.T) {
		_, err := FromCertificate(cert, &k.PublicKey)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestPrivateKey_redaction(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	k := TestGenerateKey(t, WithKeyID("kid"))
	assert.Equal(RedactedPrivateKey, k.String())
	assert.Equal(RedactedPrivateKey, fmt.Sprintf("%v", k))
	assert.Equal(RedactedPrivateKey, fmt.Sprintf("%#v", k))

	b, err := json.Marshal(k.PublicJWK())
	require.NoError(err)
	var m map[string]interface{}
	require.NoError(json.Unmarshal(b, &m))
	assert.Equal("RSA", m["kty"])
	for _, private := range []string{"d", "p", "q", "dp", "dq", "qi"} {
		assert.NotContains(m, private)
	}
}

func testSelfSigned(t *testing.T, k *rsa.PrivateKey) (*x509.Certificate, []byte) {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "keys-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &k.PublicKey, k)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, der
}
