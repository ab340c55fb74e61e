// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/cap-clientauth/keys"
)

// Handle is a certificate located in a Store. A Handle owns the private key
// reference it was created with until Close is called.
type Handle struct {
	Thumbprint  string
	Location    Location
	NotBefore   time.Time
	NotAfter    time.Time
	Certificate *x509.Certificate

	hasPrivateKey bool

	mu         sync.Mutex
	closed     bool
	privateKey crypto.PrivateKey
	release    func() error
}

// NewHandle creates a Handle for cert. priv may be nil when the store holds
// no private key for the certificate. release, if not nil, is invoked once by
// Close to free any store resource backing the handle.
func NewHandle(loc Location, cert *x509.Certificate, priv crypto.PrivateKey, release func() error) *Handle {
	return &Handle{
		Thumbprint:    keys.Thumbprint(cert),
		Location:      loc,
		NotBefore:     cert.NotBefore,
		NotAfter:      cert.NotAfter,
		Certificate:   cert,
		hasPrivateKey: priv != nil,
		privateKey:    priv,
		release:       release,
	}
}

// HasPrivateKey reports whether the store holds a private key for the
// certificate. It keeps reporting the original answer after Close.
func (h *Handle) HasPrivateKey() bool { return h.hasPrivateKey }

// PrivateKey returns the private key of the certificate.
func (h *Handle) PrivateKey() (crypto.PrivateKey, error) {
	const op = "Handle.PrivateKey"
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.closed:
		return nil, fmt.Errorf("%s: %w", op, ErrHandleClosed)
	case h.privateKey == nil:
		return nil, fmt.Errorf("%s: %s: %w", op, h.Thumbprint, ErrNoPrivateKeyAvailable)
	}
	return h.privateKey, nil
}

// Close drops the private key reference and releases the store resource. It
// is safe to call more than once.
func (h *Handle) Close() error {
	const op = "Handle.Close"
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.privateKey = nil
	if h.release != nil {
		if err := h.release(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
