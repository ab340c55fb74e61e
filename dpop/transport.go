// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package dpop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/cap-clientauth/keys"
	"github.com/hashicorp/go-hclog"
)

// maxErrorBody bounds how much of a 400 response is read to look for a
// use_dpop_nonce error.
const maxErrorBody = 64 << 10

// Transport is an http.RoundTripper that adds a fresh DPoP proof to every
// request. Nonces returned by servers in the DPoP-Nonce header are remembered
// per origin and included in later proofs. When a server rejects a request
// with a use_dpop_nonce error, the request is retried once with the new
// nonce, provided its body can be replayed.
//
// Transport is safe for concurrent use.
type Transport struct {
	key         *keys.PrivateKey
	base        http.RoundTripper
	accessToken string
	alg         keys.Alg
	logger      hclog.Logger

	mu     sync.Mutex
	nonces map[string]string
}

// ensure that Transport implements the http.RoundTripper interface
var _ http.RoundTripper = (*Transport)(nil)

// NewTransport creates a Transport signing proofs with key.
//
// Supported options:
//   - WithBase
//   - WithAccessToken
//   - WithAlgorithm
//   - WithLogger
func NewTransport(key *keys.PrivateKey, opt ...Option) (*Transport, error) {
	const op = "dpop.NewTransport"
	if key == nil {
		return nil, fmt.Errorf("%s: key is nil: %w", op, ErrNilParameter)
	}
	opts := getTransportOpts(opt...)
	if err := signingAlg(opts.withAlgorithm, key).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Transport{
		key:         key,
		base:        opts.withBase,
		accessToken: opts.withAccessToken,
		alg:         opts.withAlgorithm,
		logger:      opts.withLogger,
		nonces:      map[string]string{},
	}, nil
}

// Nonce returns the last nonce received from origin ("scheme://host").
func (t *Transport) Nonce(origin string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nonces[strings.ToLower(origin)]
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	const op = "Transport.RoundTrip"
	if req.Body != nil && req.GetBody != nil {
		// each attempt sends a copy from GetBody
		defer req.Body.Close()
	}
	origin := originOf(req)
	nonce := t.Nonce(origin)

	resp, err := t.send(req, nonce)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	newNonce := t.remember(origin, resp)
	if newNonce == "" || newNonce == nonce || !replayable(req) {
		return resp, nil
	}
	retry, err := requiresNonce(resp)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !retry {
		return resp, nil
	}
	t.logger.Debug("retrying request with server nonce", "origin", origin)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp, err = t.send(req, newNonce)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t.remember(origin, resp)
	return resp, nil
}

func (t *Transport) send(req *http.Request, nonce string) (*http.Response, error) {
	const op = "send"
	opts := []Option{WithNonce(nonce), WithAccessToken(t.accessToken), WithAlgorithm(t.alg)}
	proof, err := NewProof(req.Method, req.URL.String(), t.key, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r := req.Clone(req.Context())
	if req.GetBody != nil && req.Body != nil && req.Body != http.NoBody {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("%s: unable to replay request body: %w", op, err)
		}
		r.Body = body
	}
	r.Header.Set(HeaderName, proof.Token)
	if t.accessToken != "" {
		r.Header.Set("Authorization", HeaderName+" "+t.accessToken)
	}
	return t.base.RoundTrip(r)
}

func (t *Transport) remember(origin string, resp *http.Response) string {
	n := resp.Header.Get(NonceHeaderName)
	if n == "" {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nonces[origin] = n
	return n
}

func originOf(req *http.Request) string {
	return strings.ToLower(req.URL.Scheme + "://" + req.URL.Host)
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// replayedBody serves the already read prefix of a body followed by the
// rest of it, and closes the original body.
type replayedBody struct {
	io.Reader
	io.Closer
}

// requiresNonce reports whether resp is a use_dpop_nonce challenge, either a
// 401 with a DPoP WWW-Authenticate error or a 400 token endpoint error. Up to
// maxErrorBody bytes of a 400 body are inspected; the caller still reads the
// whole body.
func requiresNonce(resp *http.Response) (bool, error) {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		for _, v := range resp.Header.Values("WWW-Authenticate") {
			if strings.Contains(v, `error="use_dpop_nonce"`) {
				return true, nil
			}
		}
		return false, nil
	case http.StatusBadRequest:
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return false, fmt.Errorf("unable to read error response: %w", err)
		}
		resp.Body = replayedBody{
			Reader: io.MultiReader(bytes.NewReader(b), resp.Body),
			Closer: resp.Body,
		}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &e) != nil {
			return false, nil
		}
		return e.Error == "use_dpop_nonce", nil
	default:
		return false, nil
	}
}
