// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package dpop

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/cap-clientauth/keys"
)

const (
	// TokenType is the "typ" header of every proof.
	TokenType = "dpop+jwt"

	// HeaderName is the request header carrying a proof and the
	// Authorization scheme of DPoP bound access tokens.
	HeaderName = "DPoP"

	// NonceHeaderName is the response header carrying a server nonce.
	NonceHeaderName = "DPoP-Nonce"
)

// Proof is a signed DPoP proof. Token is the value of the DPoP request
// header; the other fields mirror its claims.
type Proof struct {
	HTTPMethod      string
	HTTPURL         string
	IssuedAt        time.Time
	JTI             string
	Nonce           string
	AccessTokenHash string
	Token           string
}

type proofClaims struct {
	JTI   string `json:"jti"`
	HTM   string `json:"htm"`
	HTU   string `json:"htu"`
	IAT   int64  `json:"iat"`
	Nonce string `json:"nonce,omitempty"`
	ATH   string `json:"ath,omitempty"`
}

// NewProof creates a proof for a method request to rawURL, signed with key.
// Only the public part of key is embedded in the proof.
//
// Supported options:
//   - WithNonce
//   - WithAccessToken
//   - WithAlgorithm
//   - WithNow
func NewProof(method, rawURL string, key *keys.PrivateKey, opt ...Option) (*Proof, error) {
	const op = "dpop.NewProof"
	switch {
	case method == "":
		return nil, fmt.Errorf("%s: method is empty: %w", op, ErrInvalidParameter)
	case key == nil:
		return nil, fmt.Errorf("%s: key is nil: %w", op, ErrNilParameter)
	}
	htu, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getProofOpts(opt...)
	alg := signingAlg(opts.withAlgorithm, key)
	if err := alg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	signerOpts := (&jose.SignerOptions{}).
		WithType(TokenType).
		WithHeader("jwk", key.PublicJWK())
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.SignatureAlgorithm(alg), Key: key.RSA()}, signerOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrCreatingSigner, err)
	}

	jti, err := opts.withGenID()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate proof id: %w", op, err)
	}
	iat := opts.withNow().UTC().Truncate(time.Second)
	claims := proofClaims{
		JTI:   jti,
		HTM:   method,
		HTU:   htu,
		IAT:   iat.Unix(),
		Nonce: opts.withNonce,
	}
	if opts.withAccessToken != "" {
		claims.ATH = AccessTokenHash(opts.withAccessToken)
	}
	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to serialize proof: %w", op, err)
	}
	return &Proof{
		HTTPMethod:      method,
		HTTPURL:         htu,
		IssuedAt:        iat,
		JTI:             jti,
		Nonce:           claims.Nonce,
		AccessTokenHash: claims.ATH,
		Token:           token,
	}, nil
}

// AccessTokenHash returns the "ath" claim for token: the base64url encoded
// SHA-256 of its ASCII bytes.
func AccessTokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NormalizeURL returns the "htu" claim for rawURL: scheme and host are
// lowercased, default ports dropped and the query and fragment removed.
func NormalizeURL(rawURL string) (string, error) {
	const op = "dpop.NormalizeURL"
	if rawURL == "" {
		return "", fmt.Errorf("%s: URL is empty: %w", op, ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%s: %w: %q must have a scheme and host", op, ErrInvalidURL, rawURL)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && !isDefaultPort(scheme, port) {
		host += ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path, nil
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "https" && port == "443") || (scheme == "http" && port == "80")
}

func signingAlg(override keys.Alg, key *keys.PrivateKey) keys.Alg {
	switch {
	case override != "":
		return override
	case key.Algorithm() != "":
		return key.Algorithm()
	default:
		return keys.DefaultAlgorithm
	}
}
