// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"context"
	"crypto"
	"crypto/x509"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/cap-clientauth/keys"
)

type memoryEntry struct {
	cert *x509.Certificate
	priv crypto.PrivateKey
}

// MemoryStore is an in-memory Store. It is primarily meant for tests and
// keeps track of handles which have not been closed yet.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Location]map[string]memoryEntry
	open    atomic.Int64
	lookups atomic.Int64
}

// ensure that MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[Location]map[string]memoryEntry{},
	}
}

// Add stores cert, and its optional private key, at loc and returns the
// certificate thumbprint.
func (s *MemoryStore) Add(loc Location, cert *x509.Certificate, priv crypto.PrivateKey) string {
	tp := keys.Thumbprint(cert)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[loc] == nil {
		s.entries[loc] = map[string]memoryEntry{}
	}
	s.entries[loc][tp] = memoryEntry{cert: cert, priv: priv}
	return tp
}

// Remove deletes the certificate with the given thumbprint from loc.
func (s *MemoryStore) Remove(loc Location, thumbprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[loc], NormalizeThumbprint(thumbprint))
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(ctx context.Context, loc Location, thumbprint string) (*Handle, error) {
	const op = "MemoryStore.Lookup"
	s.lookups.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.RLock()
	e, ok := s.entries[loc][thumbprint]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %s in %s: %w", op, thumbprint, loc, ErrCertificateNotFound)
	}
	s.open.Add(1)
	return NewHandle(loc, e.cert, e.priv, func() error {
		s.open.Add(-1)
		return nil
	}), nil
}

// OpenHandles returns the number of handles returned by Lookup which have not
// been closed.
func (s *MemoryStore) OpenHandles() int { return int(s.open.Load()) }

// Lookups returns the number of Lookup calls made against the store.
func (s *MemoryStore) Lookups() int { return int(s.lookups.Load()) }
