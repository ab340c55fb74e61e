// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package dpop

import (
	"net/http"
	"time"

	"github.com/hashicorp/cap-clientauth/keys"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-uuid"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// proofOptions is the set of available options for NewProof
type proofOptions struct {
	withNonce       string
	withAccessToken string
	withAlgorithm   keys.Alg
	withNow         func() time.Time
	withGenID       func() (string, error)
}

func proofDefaults() proofOptions {
	return proofOptions{
		withNow:   time.Now,
		withGenID: uuid.GenerateUUID,
	}
}

func getProofOpts(opt ...Option) proofOptions {
	opts := proofDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// transportOptions is the set of available options for NewTransport
type transportOptions struct {
	withBase        http.RoundTripper
	withAccessToken string
	withAlgorithm   keys.Alg
	withLogger      hclog.Logger
}

func transportDefaults() transportOptions {
	return transportOptions{
		withBase:   http.DefaultTransport,
		withLogger: hclog.NewNullLogger(),
	}
}

func getTransportOpts(opt ...Option) transportOptions {
	opts := transportDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithNonce sets the server provided "nonce" claim of a proof.
func WithNonce(nonce string) Option {
	return func(o interface{}) {
		if o, ok := o.(*proofOptions); ok {
			o.withNonce = nonce
		}
	}
}

// WithAccessToken binds a proof to an access token through the "ath" claim.
// For a Transport, it also sets the "Authorization: DPoP" header of every
// request.
func WithAccessToken(token string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *proofOptions:
			v.withAccessToken = token
		case *transportOptions:
			v.withAccessToken = token
		}
	}
}

// WithAlgorithm overrides the signing algorithm of the key. The default is
// the key's algorithm, or RS256 when it has none.
func WithAlgorithm(alg keys.Alg) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *proofOptions:
			v.withAlgorithm = alg
		case *transportOptions:
			v.withAlgorithm = alg
		}
	}
}

// WithNow provides an optional clock for the "iat" claim.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*proofOptions); ok && now != nil {
			o.withNow = now
		}
	}
}

// WithBase sets the RoundTripper a Transport sends requests through. The
// default is http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(o interface{}) {
		if o, ok := o.(*transportOptions); ok && rt != nil {
			o.withBase = rt
		}
	}
}

// WithLogger provides an optional logger for a Transport.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*transportOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

func withGenID(fn func() (string, error)) Option {
	return func(o interface{}) {
		if o, ok := o.(*proofOptions); ok && fn != nil {
			o.withGenID = fn
		}
	}
}
