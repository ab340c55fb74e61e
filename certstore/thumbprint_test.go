// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeThumbprint(t *testing.T) {
	t.Parallel()
	const want = "E7471A50A978AB94DBDC161C9713F1F6DA40C7D6"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already-normal", in: want, want: want},
		{name: "lowercase", in: "e7471a50a978ab94dbdc161c9713f1f6da40c7d6", want: want},
		{name: "spaces", in: "e7 47 1a 50 a9 78 ab 94 db dc 16 1c 97 13 f1 f6 da 40 c7 d6", want: want},
		{name: "colons", in: "E7:47:1A:50:A9:78:AB:94:DB:DC:16:1C:97:13:F1:F6:DA:40:C7:D6", want: want},
		{name: "surrounding-whitespace", in: "\t " + want + "\r\n", want: want},
		{name: "left-to-right-mark", in: "‎" + want, want: want},
		{name: "zero-width-space", in: "E747​1A50A978AB94DBDC161C9713F1F6DA40C7D6", want: want},
		{name: "empty", in: "", want: ""},
		{name: "only-noise", in: " : ‎ ", want: ""},
		{name: "not-hex", in: "not a thumbprint", want: "NOTATHUMBPRINT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			got := NormalizeThumbprint(tt.in)
			assert.Equal(tt.want, got)
			assert.Equal(got, NormalizeThumbprint(got), "normalization must be idempotent")
		})
	}
}

func TestParseLocation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "CurrentUser", want: CurrentUser},
		{in: "current-user", want: CurrentUser},
		{in: "LOCAL_MACHINE", want: LocalMachine},
		{in: "LocalMachine", want: LocalMachine},
		{in: "", wantErr: true},
		{in: "cloud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, func() Location { l, _ := ParseLocation(got.String()); return l }())
		})
	}
}
