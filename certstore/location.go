// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"fmt"
	"strings"
)

// Location selects which certificate store is searched.
type Location int

const (
	// CurrentUser is the store of the user running the process.
	CurrentUser Location = iota
	// LocalMachine is the machine-wide store.
	LocalMachine
)

func (l Location) String() string {
	switch l {
	case CurrentUser:
		return "CurrentUser"
	case LocalMachine:
		return "LocalMachine"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// ParseLocation parses "CurrentUser" or "LocalMachine". Matching ignores case,
// dashes and underscores, so "current-user" is accepted as well.
func ParseLocation(s string) (Location, error) {
	const op = "certstore.ParseLocation"
	n := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	switch n {
	case "currentuser", "user":
		return CurrentUser, nil
	case "localmachine", "machine":
		return LocalMachine, nil
	default:
		return 0, fmt.Errorf("%s: unknown store location %q: %w", op, s, ErrInvalidParameter)
	}
}
