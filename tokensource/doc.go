// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
tokensource provides an oauth2.TokenSource for the client credentials grant
authenticated with private_key_jwt client assertions.

For every token request the source looks up the authority's metadata in a
discovery.Cache, resolves the configured secret into a signing key, signs a
fresh client assertion for the issuer and posts it to the token endpoint.
With DPoP enabled the request also carries a DPoP proof and the returned
token is bound to the same key.

	ts, err := tokensource.New(&tokensource.Config{
		Authority: "https://login.example.com/tenant",
		ClientID:  "client-1",
		Secret:    secret.Secret(os.Getenv("CLIENT_KEY")),
		Scopes:    []string{"api://default/.default"},
		Cache:     cache,
	})
	...
	client := oauth2.NewClient(ctx, ts)
*/
package tokensource
