// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secret

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/cap-clientauth/certstore"
)

// Kind is the detected format of a secret.
type Kind int

const (
	KindUnknown Kind = iota
	KindJWK
	KindPEM
	KindBase64
	KindThumbprint
)

func (k Kind) String() string {
	switch k {
	case KindJWK:
		return "jwk"
	case KindPEM:
		return "pem"
	case KindBase64:
		return "base64"
	case KindThumbprint:
		return "thumbprint"
	default:
		return "unknown"
	}
}

// minBase64Len keeps short hex thumbprints, which are also valid Base64, on
// the thumbprint path.
const minBase64Len = 100

// Input is a secret whose format has been detected. It carries no validated
// key material.
type Input struct {
	kind  Kind
	value string
}

// Kind returns the detected format.
func (in Input) Kind() Kind { return in.kind }

// Value returns the secret in a form ready for its Kind: trimmed JSON for
// KindJWK, trimmed PEM for KindPEM, the decoded JSON for KindBase64 and the
// normalized thumbprint for KindThumbprint.
func (in Input) Value() string { return in.value }

// String does not include the value.
func (in Input) String() string {
	return fmt.Sprintf("secret.Input(%s)", in.kind)
}

// Parse detects the format of raw. The first matching format wins; a Base64
// candidate that does not decode to JSON falls through to the thumbprint
// format.
func Parse(raw string) (Input, error) {
	const op = "secret.Parse"
	s := strings.TrimSpace(raw)
	if s == "" {
		return Input{}, fmt.Errorf("%s: secret is empty: %w", op, ErrInvalidInput)
	}
	switch {
	case strings.HasPrefix(s, "{"):
		return Input{kind: KindJWK, value: s}, nil
	case hasPEMPrefix(s):
		return Input{kind: KindPEM, value: s}, nil
	}
	if decoded, ok := decodeBase64JSON(s); ok {
		return Input{kind: KindBase64, value: decoded}, nil
	}
	tp := certstore.NormalizeThumbprint(s)
	if tp == "" {
		return Input{}, fmt.Errorf("%s: thumbprint is empty after normalization: %w", op, ErrInvalidInput)
	}
	return Input{kind: KindThumbprint, value: tp}, nil
}

func hasPEMPrefix(s string) bool {
	const prefix = "-----BEGIN"
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func decodeBase64JSON(s string) (string, bool) {
	if len(s) <= minBase64Len || len(s)%4 != 0 || !isBase64Alphabet(s) {
		return "", false
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !json.Valid(b) {
		return "", false
	}
	return string(b), true
}

func isBase64Alphabet(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '+', r == '/', r == '=':
		default:
			return false
		}
	}
	return true
}
