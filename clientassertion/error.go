// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"errors"

	"github.com/hashicorp/cap-clientauth/keys"
)

var (
	// these may happen due to user error

	ErrMissingClientID   = errors.New("missing client ID")
	ErrMissingIssuer     = errors.New("missing issuer")
	ErrNilPrivateKey     = errors.New("nil private key")
	ErrInvalidExpiration = errors.New("invalid expiration")
	ErrReservedHeader    = errors.New("reserved header")

	// ErrUnsupportedAlgorithm is returned for algorithms other than
	// RS256/384/512 and PS256/384/512.
	ErrUnsupportedAlgorithm = keys.ErrUnsupportedAlgorithm

	// if these happen, either the user directly instantiated &JWT{}
	// or there's a bug somewhere.

	ErrMissingFuncIDGenerator = errors.New("missing IDgen func; please use NewJWT()")
	ErrMissingFuncNow         = errors.New("missing now func; please use NewJWT()")
	ErrCreatingSigner         = errors.New("error creating jwt signer")
)
