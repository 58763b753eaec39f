// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"os"
)

// Lookuper looks up environment variables by their exact name.
type Lookuper interface {
	LookupEnv(name string) (string, bool)
}

// LookupFunc is a functional implementation of the Lookuper interface.
type LookupFunc func(string) (string, bool)

// LookupEnv implements the Lookuper interface.
func (f LookupFunc) LookupEnv(name string) (string, bool) {
	return f(name)
}

// OSEnv is a Lookuper backed by the environment of the current process.
var OSEnv Lookuper = LookupFunc(os.LookupEnv)

// Environ is a static set of environment variables which implements
// the Lookuper interface. It's mostly useful for tests.
type Environ map[string]string

// LookupEnv implements the Lookuper interface.
func (e Environ) LookupEnv(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}

// Lookup returns a Reader for the variable, name, as seen by l.
func Lookup(l Lookuper, name string) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		v, ok := l.LookupEnv(name)
		if !ok {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}

// Chain returns a Lookuper which asks each of ls in order and returns
// the first value found.
func Chain(ls ...Lookuper) Lookuper {
	return LookupFunc(func(name string) (string, bool) {
		rs := make([]Reader[string], len(ls))
		for i, l := range ls {
			rs[i] = Lookup(l, name)
		}

		// Lookup readers never fail.
		v, _ := Or(rs...).Read(context.Background())
		return v.Value()
	})
}
