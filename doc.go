// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package envorm maps environment variables to typed, validated values.
//
// A Field is a typed accessor over one environment variable. Fields are
// created with String, Int, Float, Bool, Duration or List and configured
// with a default, a required flag, choices or extra validators:
//
//	var (
//	    port  = envorm.Int("PORT").Default(8080)
//	    mode  = envorm.String("MODE", "dev", "prod").Default("dev")
//	    dbURL = envorm.String("DATABASE_URL").Required().Secret()
//	    hosts = envorm.List("ALLOWED_HOSTS", envorm.Identity)
//	)
//
// A field resolves lazily on first access and keeps its value until
// Update is called. Variables are converted on the way in; defaults are
// returned as is.
//
// # Models
//
// A Model binds fields under attribute names and resolves all of them
// in a single build pass. Any failure is recorded and the pass moves on
// to the next field, so one bad variable never hides another:
//
//	m, err := envorm.New(ctx, envorm.Bindings{
//	    envorm.Bind("port", port),
//	    envorm.Bind("mode", mode),
//	    envorm.Bind("db_url", dbURL),
//	})
//	if err != nil {
//	    // the bindings themselves are malformed
//	}
//	if !m.IsValid() {
//	    for _, rec := range m.Errors() {
//	        fmt.Println(rec)
//	    }
//	}
//
// Structs of fields can implement Schema themselves by returning their
// bindings from a Fields method.
//
// # Errors
//
// A build pass records three kinds of failure, each serialized by its own
// Record method:
//
//   - ConvertError: {"field", "value", "expected_type"}
//   - ValueRequiredError: {"field", "required": true}
//   - ValidationError: {"field", "detail": {"message"}}
//
// Accessing a Field directly returns these errors instead.
//
// # Documentation
//
// Doc renders "NAME=default" for every field and Describe renders
// "NAME=value" using the values of the most recent build pass.
package envorm
