// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secret

import "errors"

var (
	// ErrInvalidInput is returned for empty secrets and for secrets whose
	// detected format could not be parsed into an RSA key.
	ErrInvalidInput = errors.New("invalid secret")

	// ErrNoCertificateProvider is returned when a secret is a certificate
	// thumbprint but the Resolver has no CertificateProvider. Errors carrying
	// it also match certstore.ErrCertificateNotFound.
	ErrNoCertificateProvider = errors.New("no certificate provider configured")
)
