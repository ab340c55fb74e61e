// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package secret turns a configured client secret into an RSA signing key.
//
// A secret is a single string in one of four formats, detected in order:
//
//  1. an inline JSON Web Key ("{...}")
//  2. a PEM encoded private key ("-----BEGIN ...")
//  3. a Base64 encoded JSON Web Key
//  4. a certificate thumbprint, resolved through a CertificateProvider
//
// Parse performs the detection and returns a typed Input; a Resolver turns an
// Input into a *keys.PrivateKey.
package secret
