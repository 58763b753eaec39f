// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import "github.com/spf13/viper"

// ViperLookuper is a Lookuper backed by a *viper.Viper.
//
// Viper keys are case-insensitive, so names are matched regardless of
// their case. With AutomaticEnv enabled, viper's own rules apply, e.g.
// empty variables are treated as unset unless AllowEmptyEnv is enabled.
type ViperLookuper struct {
	v *viper.Viper
}

// Viper returns a Lookuper which resolves names through v. Only values
// already known to v are used; config files are never read.
func Viper(v *viper.Viper) ViperLookuper {
	return ViperLookuper{v: v}
}

// LookupEnv implements the Lookuper interface.
func (l ViperLookuper) LookupEnv(name string) (string, bool) {
	if !l.v.IsSet(name) {
		return "", false
	}
	return l.v.GetString(name), true
}
