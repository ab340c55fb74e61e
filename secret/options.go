// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secret

import "github.com/hashicorp/go-hclog"

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

type resolverOptions struct {
	withProvider CertificateProvider
	withLogger   hclog.Logger
}

func resolverDefaults() resolverOptions {
	return resolverOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getResolverOpts(opt ...Option) resolverOptions {
	opts := resolverDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithCertificateProvider sets the provider used to resolve thumbprint
// secrets. Without one, thumbprint secrets fail with ErrNoCertificateProvider.
func WithCertificateProvider(p CertificateProvider) Option {
	return func(o interface{}) {
		if o, ok := o.(*resolverOptions); ok {
			o.withProvider = p
		}
	}
}

// WithLogger provides an optional logger for the Resolver.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*resolverOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
