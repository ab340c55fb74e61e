// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"
)

const testAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

var testSigningAlgs = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512, jose.PS256, jose.PS384, jose.PS512,
}

// TestProvider is a local TLS authorization server for tests. It serves a
// discovery document and a client credentials token endpoint that accepts
// private_key_jwt client assertions and, optionally, DPoP proofs.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu                sync.Mutex
	issuer            string
	failDiscovery     bool
	clientKeys        map[string]*rsa.PublicKey
	dpopNonce         string
	discoveryRequests int
	tokenRequests     int
	lastTokenRequest  url.Values
	lastDPoPProof     string
}

// StartTestProvider creates a disposable TestProvider, stopped when the test
// ends.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		clientKeys: map[string]*rsa.PublicKey{},
	}
	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: p.httpServer.Certificate().Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// Addr returns the current base URL for the test provider's running
// webserver. It is also the provider's issuer.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// TokenEndpoint returns the URL of the token endpoint.
func (p *TestProvider) TokenEndpoint() string { return p.Addr() + "/token" }

// SetIssuer makes the discovery document report issuer instead of Addr().
func (p *TestProvider) SetIssuer(issuer string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issuer = issuer
}

// SetFailDiscovery makes the discovery endpoint answer with a 500.
func (p *TestProvider) SetFailDiscovery(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failDiscovery = fail
}

// AddClient registers the public key client assertions of clientID are
// verified with.
func (p *TestProvider) AddClient(clientID string, pub *rsa.PublicKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientKeys[clientID] = pub
}

// RequireDPoPNonce makes the token endpoint require a DPoP proof carrying
// nonce. Proofs without it are answered with a use_dpop_nonce error.
func (p *TestProvider) RequireDPoPNonce(nonce string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dpopNonce = nonce
}

// DiscoveryRequests returns how many discovery documents were served or
// refused.
func (p *TestProvider) DiscoveryRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.discoveryRequests
}

// TokenRequests returns how many token requests were received.
func (p *TestProvider) TokenRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenRequests
}

// LastTokenRequest returns the form of the last token request and its DPoP
// header, if any.
func (p *TestProvider) LastTokenRequest() (url.Values, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastTokenRequest, p.lastDPoPProof
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeTokenErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) error {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}

	w.WriteHeader(statusCode)
	return p.writeJSON(w, &body)
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch req.URL.Path {
	case "/.well-known/openid-configuration":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.discoveryRequests++
		if p.failDiscovery {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		issuer := p.issuer
		if issuer == "" {
			issuer = p.Addr()
		}
		reply := struct {
			Issuer             string   `json:"issuer"`
			AuthEndpoint       string   `json:"authorization_endpoint"`
			TokenEndpoint      string   `json:"token_endpoint"`
			JWKSURI            string   `json:"jwks_uri"`
			UserinfoEndpoint   string   `json:"userinfo_endpoint"`
			EndSessionEndpoint string   `json:"end_session_endpoint"`
			AuthMethods        []string `json:"token_endpoint_auth_methods_supported"`
			DPoPAlgs           []string `json:"dpop_signing_alg_values_supported"`
		}{
			Issuer:             issuer,
			AuthEndpoint:       p.Addr() + "/auth",
			TokenEndpoint:      p.TokenEndpoint(),
			JWKSURI:            p.Addr() + "/certs",
			UserinfoEndpoint:   p.Addr() + "/userinfo",
			EndSessionEndpoint: p.Addr() + "/logout",
			AuthMethods:        []string{"private_key_jwt"},
			DPoPAlgs:           []string{"RS256", "PS256"},
		}
		_ = p.writeJSON(w, &reply)

	case "/token":
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.tokenRequests++
		if err := req.ParseForm(); err != nil {
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		p.lastTokenRequest = req.PostForm
		p.lastDPoPProof = req.Header.Get("DPoP")

		if req.PostForm.Get("grant_type") != "client_credentials" {
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "unsupported_grant_type", "")
			return
		}
		if req.PostForm.Get("client_assertion_type") != testAssertionType {
			_ = p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", "missing client assertion")
			return
		}
		if err := p.verifyAssertion(req.PostForm.Get("client_assertion")); err != nil {
			_ = p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", err.Error())
			return
		}

		tokenType := "Bearer"
		if proof := req.Header.Get("DPoP"); proof != "" || p.dpopNonce != "" {
			nonce, err := p.verifyDPoP(proof)
			if err != nil {
				_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_dpop_proof", err.Error())
				return
			}
			if p.dpopNonce != "" && nonce != p.dpopNonce {
				w.Header().Set("DPoP-Nonce", p.dpopNonce)
				_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "use_dpop_nonce", "nonce required")
				return
			}
			tokenType = "DPoP"
		}

		_ = p.writeJSON(w, map[string]interface{}{
			"access_token": fmt.Sprintf("test-access-token-%d", p.tokenRequests),
			"token_type":   tokenType,
			"expires_in":   3600,
			"scope":        req.PostForm.Get("scope"),
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *TestProvider) verifyAssertion(assertion string) error {
	token, err := jwt.ParseSigned(assertion, testSigningAlgs)
	if err != nil {
		return err
	}
	if typ := token.Headers[0].ExtraHeaders[jose.HeaderType]; typ != "client-authentication+jwt" {
		return fmt.Errorf("unexpected typ %v", typ)
	}
	var unverified jwt.Claims
	if err := token.UnsafeClaimsWithoutVerification(&unverified); err != nil {
		return err
	}
	pub, ok := p.clientKeys[unverified.Subject]
	if !ok {
		return fmt.Errorf("unknown client %q", unverified.Subject)
	}
	var claims jwt.Claims
	if err := token.Claims(pub, &claims); err != nil {
		return err
	}
	issuer := p.issuer
	if issuer == "" {
		issuer = p.Addr()
	}
	return claims.ValidateWithLeeway(jwt.Expected{
		Issuer:      claims.Subject,
		AnyAudience: jwt.Audience{issuer},
		Time:        time.Now(),
	}, time.Second)
}

func (p *TestProvider) verifyDPoP(proof string) (string, error) {
	if proof == "" {
		return "", fmt.Errorf("missing DPoP proof")
	}
	token, err := jwt.ParseSigned(proof, testSigningAlgs)
	if err != nil {
		return "", err
	}
	h := token.Headers[0]
	if h.ExtraHeaders[jose.HeaderType] != "dpop+jwt" {
		return "", fmt.Errorf("unexpected typ %v", h.ExtraHeaders[jose.HeaderType])
	}
	if h.JSONWebKey == nil || !h.JSONWebKey.IsPublic() {
		return "", fmt.Errorf("proof must embed a public jwk")
	}
	var claims struct {
		HTM   string `json:"htm"`
		HTU   string `json:"htu"`
		JTI   string `json:"jti"`
		Nonce string `json:"nonce"`
	}
	if err := token.Claims(h.JSONWebKey.Key, &claims); err != nil {
		return "", err
	}
	switch {
	case claims.HTM != http.MethodPost:
		return "", fmt.Errorf("unexpected htm %q", claims.HTM)
	case claims.HTU != p.TokenEndpoint():
		return "", fmt.Errorf("unexpected htu %q", claims.HTU)
	case claims.JTI == "":
		return "", fmt.Errorf("missing jti")
	}
	return claims.Nonce, nil
}
