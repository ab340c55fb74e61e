// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientauth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/hashicorp/cap-clientauth/clientassertion"
	"github.com/hashicorp/cap-clientauth/discovery"
	"github.com/hashicorp/cap-clientauth/secret"
	"github.com/hashicorp/cap-clientauth/tokensource"
)

func Example_clientAssertion() {
	ctx := context.Background()

	// A client secret may be a JWK, a PEM key, base64 encoded JWK JSON or the
	// thumbprint of a certificate in a certificate store.
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		// handle error
	}
	clientSecret := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	}))

	// Resolve the secret into a signing key.
	resolver := secret.NewResolver()
	key, err := resolver.Resolve(ctx, clientSecret)
	if err != nil {
		// handle error
	}

	// Discover the authority's metadata. Documents are cached per authority
	// and concurrent callers share a single fetch.
	cache, err := discovery.NewCache()
	if err != nil {
		// handle error
	}
	doc, err := cache.Get(ctx, "https://login.your-authority.com/tenant")
	if err != nil {
		// handle error
	}

	// Sign an assertion for the token endpoint.
	assertion, err := clientassertion.Create(doc.Issuer, "your_client_id", key)
	if err != nil {
		// handle error
	}
	fmt.Println(assertion.Type)
	fmt.Println(assertion.Value)
}

func Example_tokenSource() {
	cache, err := discovery.NewCache()
	if err != nil {
		// handle error
	}

	// The token source discovers the token endpoint, signs a fresh assertion
	// for every request and caches the token until it expires.
	ts, err := tokensource.New(&tokensource.Config{
		Authority: "https://login.your-authority.com/tenant",
		ClientID:  "your_client_id",
		Secret:    secret.Secret("your_client_key_jwk_or_pem"),
		Scopes:    []string{"api://your-api/.default"},
		Cache:     cache,
		DPoP:      true,
	})
	if err != nil {
		// handle error
	}
	tok, err := ts.Token()
	if err != nil {
		// handle error
	}
	fmt.Println(tok.Type())
}
