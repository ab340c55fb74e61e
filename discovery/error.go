// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package discovery

import "errors"

var (
	// ErrMalformedAuthority is returned for authorities that are not absolute
	// http(s) URLs. Retrying will not help.
	ErrMalformedAuthority = errors.New("malformed authority URL")

	// ErrDiscoveryFetchFailed is returned when the metadata could not be
	// fetched or was unusable. It may succeed on a later attempt.
	ErrDiscoveryFetchFailed = errors.New("discovery fetch failed")

	ErrInvalidParameter = errors.New("invalid parameter")
)
