// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

// Document is the metadata of one authority. Documents are values; the cache
// replaces them wholesale and never modifies one that has been returned.
type Document struct {
	// Authority is the canonical authority the document was fetched for.
	Authority string

	Issuer                string
	AuthorizationEndpoint string
	TokenEndpoint         string
	UserInfoEndpoint      string
	JWKSURI               string
	EndSessionEndpoint    string

	FetchedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the document must be fetched again at now.
func (d Document) Expired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}

// CanonicalAuthority validates authority and returns the form used as the
// cache key: scheme and host lowercased, internationalized host names
// converted to their ASCII form and trailing slashes removed from the path.
func CanonicalAuthority(authority string) (string, error) {
	const op = "discovery.CanonicalAuthority"
	raw := strings.TrimSpace(authority)
	if raw == "" {
		return "", fmt.Errorf("%s: authority is empty: %w", op, ErrMalformedAuthority)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrMalformedAuthority, err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme != "https" && scheme != "http":
		return "", fmt.Errorf("%s: %w: %q is not an http(s) URL", op, ErrMalformedAuthority, raw)
	case u.Hostname() == "":
		return "", fmt.Errorf("%s: %w: %q has no host", op, ErrMalformedAuthority, raw)
	case u.User != nil, u.RawQuery != "", u.Fragment != "":
		return "", fmt.Errorf("%s: %w: %q must not carry user info, a query or a fragment", op, ErrMalformedAuthority, raw)
	}

	host := u.Hostname()
	if ip := net.ParseIP(host); ip == nil {
		host, err = idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("%s: %w: %w", op, ErrMalformedAuthority, err)
		}
	}
	host = strings.ToLower(host)
	if port := u.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host + strings.TrimRight(u.EscapedPath(), "/"), nil
}
