// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// providerOptions is the set of available options for Provider functions
type providerOptions struct {
	withLocation Location
	withNow      func() time.Time
	withLogger   hclog.Logger
}

func providerDefaults() providerOptions {
	return providerOptions{
		withLocation: CurrentUser,
		withNow:      time.Now,
		withLogger:   hclog.NewNullLogger(),
	}
}

func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// fileStoreOptions is the set of available options for FileStore functions
type fileStoreOptions struct {
	withDirectories map[Location]string
	withPassword    string
	withLogger      hclog.Logger
}

func fileStoreDefaults() fileStoreOptions {
	return fileStoreOptions{
		withDirectories: map[Location]string{
			CurrentUser:  defaultDirectory(CurrentUser),
			LocalMachine: defaultDirectory(LocalMachine),
		},
		withLogger: hclog.NewNullLogger(),
	}
}

func getFileStoreOpts(opt ...Option) fileStoreOptions {
	opts := fileStoreDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLocation selects the store location searched by a Provider. The
// default is CurrentUser.
func WithLocation(l Location) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withLocation = l
		}
	}
}

// WithNow provides an optional clock used to check certificate validity.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && now != nil {
			o.withNow = now
		}
	}
}

// WithLogger provides an optional logger for: Provider, FileStore
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if l == nil {
			return
		}
		switch v := o.(type) {
		case *providerOptions:
			v.withLogger = l
		case *fileStoreOptions:
			v.withLogger = l
		}
	}
}

// WithDirectory overrides the directory backing a FileStore location.
func WithDirectory(l Location, dir string) Option {
	return func(o interface{}) {
		if o, ok := o.(*fileStoreOptions); ok {
			o.withDirectories[l] = dir
		}
	}
}

// WithPKCS12Password sets the password used to open PKCS#12 archives in a
// FileStore. The default is the empty password.
func WithPKCS12Password(password string) Option {
	return func(o interface{}) {
		if o, ok := o.(*fileStoreOptions); ok {
			o.withPassword = password
		}
	}
}
