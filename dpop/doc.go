// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
dpop creates DPoP proofs (RFC 9449): short lived JWTs that bind an HTTP
request, and optionally an access token, to an RSA key held by the client.

A proof carries the public key in its "jwk" header and the request in its
claims:

	header: {"typ": "dpop+jwt", "alg": "RS256", "jwk": {"kty": "RSA", "n": ..., "e": ...}}
	claims: {"jti": uuid, "htm": "POST", "htu": "https://server/token", "iat": now,
	         "nonce": optional, "ath": optional}

Every proof has a fresh jti and must be used for exactly one request.
Transport is an http.RoundTripper that attaches a new proof to each request
and follows the server's DPoP-Nonce challenges.
*/
package dpop
