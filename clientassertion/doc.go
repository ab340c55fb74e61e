// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
clientassertion signs JWTs with an RSA private key for use in OAuth 2.0
client_assertion requests, A.K.A. private_key_jwt (RFC 7523).
reference: https://oauth.net/private-key-jwt/

The assertion identifies the client as both issuer and subject and uses the
authorization server's issuer as its audience:

	header: {"alg": "RS256", "typ": "client-authentication+jwt", "kid": "..."}
	claims: {"sub": clientID, "iss": clientID, "aud": issuer,
	         "iat": now, "nbf": now, "exp": now+expiry, "jti": uuid}

Assertions are short lived (10 seconds unless WithExpiry says otherwise) and
every Serialize call produces a fresh jti.

Example usage:

	a, err := clientassertion.Create("https://issuer", "client-id", key)
	...
	form.Set("client_assertion_type", a.Type)
	form.Set("client_assertion", a.Value)
*/
package clientassertion
