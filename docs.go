// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// clientauth provides a collection of related packages which let a
// confidential OAuth client authenticate to an authorization server with
// signed client assertions (RFC 7523) instead of a shared secret.
//
// The packages build on one another:
//
//	keys             RSA signing keys loaded from PEM, JWK or certificates
//	certstore        certificate lookup by thumbprint with validity checks
//	secret           classification and resolution of client secret strings
//	discovery        cached OpenID Provider metadata per authority
//	clientassertion  creation of signed client assertion JWTs
//	dpop             DPoP proofs and an http.RoundTripper which sends them
//	tokensource      an oauth2.TokenSource for the client credentials grant
//
// See examples/cli for a command line client wiring them together.
package clientauth
