// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"bytes"
	"context"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewClient(t *testing.T) {
	t.Parallel()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}))

	t.Run("with-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewClient(buf.String(), 5*time.Second)
		require.NoError(err)
		assert.Equal(5*time.Second, c.Timeout)
		resp, err := c.Get(srv.URL)
		require.NoError(err)
		resp.Body.Close()
		assert.Equal(http.StatusOK, resp.StatusCode)
	})

	t.Run("system-roots-reject-test-ca", func(t *testing.T) {
		c, err := NewClient("", 0)
		require.NoError(t, err)
		_, err = c.Get(srv.URL)
		assert.Error(t, err)
	})

	t.Run("invalid-pem", func(t *testing.T) {
		c, err := NewClient("not a pem", 0)
		assert.ErrorIs(t, err, ErrInvalidCertificatePem)
		assert.Nil(t, c)
	})
}

func TestClientContext(t *testing.T) {
	t.Parallel()
	c, err := NewClient("", 0)
	require.NoError(t, err)
	ctx := ClientContext(context.Background(), c)
	got, ok := ctx.Value(oauth2.HTTPClient).(*http.Client)
	require.True(t, ok)
	assert.Same(t, c, got)
}
