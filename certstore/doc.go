// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
certstore locates certificates, and their private keys, by thumbprint.

Primary types provided by the package

* Store: a certificate store that can look up a certificate by its
normalized thumbprint in a given Location. Two implementations are provided:
FileStore, backed by per-location directories of PEM bundles and PKCS#12
archives, and MemoryStore, an in-memory store for tests.

* Handle: a certificate found in a Store. Handles are never cached; callers
must Close a Handle as soon as they are done with its private key.

* Provider: wraps a Store with a clock and validates what it finds. Expired,
not yet valid, and key-less certificates are rejected with typed errors.

Thumbprints are compared after NormalizeThumbprint: whitespace, colons and
invisible format characters (often pasted along with a thumbprint copied from
a certificate manager) are removed and the result is uppercased.
*/
package certstore
