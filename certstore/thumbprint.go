// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

func isThumbprintNoise(r rune) bool {
	return r == ':' || unicode.IsSpace(r) || unicode.Is(unicode.Cf, r)
}

// NormalizeThumbprint removes whitespace, colons and Unicode format
// characters from s and uppercases the result. It is idempotent.
func NormalizeThumbprint(s string) string {
	cleaned, _, err := transform.String(runes.Remove(runes.Predicate(isThumbprintNoise)), s)
	if err != nil {
		// only reachable with invalid UTF-8; keep the bytes we were given
		cleaned = strings.Map(func(r rune) rune {
			if isThumbprintNoise(r) {
				return -1
			}
			return r
		}, s)
	}
	return strings.ToUpper(cleaned)
}
