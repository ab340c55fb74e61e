// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import "errors"

var (
	ErrInvalidParameter       = errors.New("invalid parameter")
	ErrNilParameter           = errors.New("nil parameter")
	ErrCertificateNotFound    = errors.New("certificate not found")
	ErrCertificateExpired     = errors.New("certificate is expired")
	ErrCertificateNotYetValid = errors.New("certificate is not yet valid")
	ErrNoPrivateKeyAvailable  = errors.New("no private key available")
	ErrHandleClosed           = errors.New("certificate handle is closed")
	ErrStoreUnavailable       = errors.New("certificate store unavailable")
)
