// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keys

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

type keyOptions struct {
	withAlgorithm Alg
	withKeyID     string
}

func keyDefaults() keyOptions {
	return keyOptions{}
}

func getKeyOpts(opt ...Option) keyOptions {
	opts := keyDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithAlgorithm records the JOSE signing algorithm the key is meant for.
func WithAlgorithm(a Alg) Option {
	return func(o interface{}) {
		if o, ok := o.(*keyOptions); ok {
			o.withAlgorithm = a
		}
	}
}

// WithKeyID sets the key id ("kid").
func WithKeyID(id string) Option {
	return func(o interface{}) {
		if o, ok := o.(*keyOptions); ok {
			o.withKeyID = id
		}
	}
}
