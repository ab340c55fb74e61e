// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import "context"

// Store is a certificate store. Lookup receives a normalized thumbprint and
// must return an error wrapping ErrCertificateNotFound on a miss. Stores do
// not validate what they return; see Provider.
type Store interface {
	Lookup(ctx context.Context, loc Location, thumbprint string) (*Handle, error)
}
