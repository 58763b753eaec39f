// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides the raw value sources envorm fields read from.
//
// The package is built around a Reader[T], which represents a source of a
// configuration value that may or may not be present. Readers compose with
// small combinators such as Or, Map and Default.
//
// # Core Concepts
//
// Value[T] represents a configuration value that may or may not be set. This
// distinguishes between "not set" and "set to the zero value", which matters
// for environment variables: an empty variable is still a present variable.
//
// Lookuper abstracts the environment table itself. OSEnv reads the process
// environment, Environ is a static map and Viper resolves names through a
// *viper.Viper instance.
//
// # Basic Usage
//
// Read a variable with a fallback:
//
//	addr := config.Default(":8080", config.Lookup(config.OSEnv, "HTTP_ADDR"))
//
// Try multiple names in order and convert the result:
//
//	workers := config.Map(
//	    config.Or(
//	        config.Lookup(config.OSEnv, "WORKERS"),
//	        config.Lookup(config.OSEnv, "LEGACY_WORKERS"),
//	    ),
//	    func(ctx context.Context, s string) (int, error) {
//	        return strconv.Atoi(s)
//	    },
//	)
//
// Readers distinguish between three states:
//   - Value is set (returns Value with set=true)
//   - Value is not set (returns Value with set=false, no error)
//   - Error occurred (returns error)
package config
