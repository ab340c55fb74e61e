// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package keys normalizes RSA private signing keys.
//
// A PrivateKey can be built from a PEM document (PKCS#1 or PKCS#8), a JSON
// Web Key (RFC 7517) or a certificate and its matching private key. Whatever
// the source, the result carries the full RSA parameter set (n, e, d, p, q,
// dp, dq, qi) plus an optional signing algorithm and key id, and is validated
// before it is returned.
//
// A PrivateKey is safe for concurrent use once constructed. Its String and
// GoString methods are redacted; use JWK to export key material explicitly.
package keys
