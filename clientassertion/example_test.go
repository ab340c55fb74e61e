// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion_test

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/cap-clientauth/clientassertion"
	"github.com/hashicorp/cap-clientauth/keys"
)

func ExampleCreate() {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		fmt.Println(err)
		return
	}
	key, err := keys.New(rsaKey, keys.WithKeyID("abc"))
	if err != nil {
		fmt.Println(err)
		return
	}
	a, err := clientassertion.Create("https://issuer", "client-1", key)
	if err != nil {
		fmt.Println(err)
		return
	}

	// decode and inspect the JWT -- this is the authorization server's job
	token, err := jwt.ParseSigned(a.Value, []jose.SignatureAlgorithm{jose.RS256})
	if err != nil {
		fmt.Println(err)
		return
	}
	h := token.Headers[0]
	fmt.Printf("Headers - KeyID: %s; Algorithm: %s; typ: %s\n", h.KeyID, h.Algorithm, h.ExtraHeaders["typ"])
	var claims jwt.Claims
	if err := token.Claims(key.Public(), &claims); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Claims  - Issuer: %s; Subject: %s; Audience: %v\n", claims.Issuer, claims.Subject, claims.Audience)
	fmt.Println(a.Type)

	// Output:
	// Headers - KeyID: abc; Algorithm: RS256; typ: client-authentication+jwt
	// Claims  - Issuer: client-1; Subject: client-1; Audience: [https://issuer]
	// urn:ietf:params:oauth:client-assertion-type:jwt-bearer
}
