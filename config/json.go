// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"encoding/json"
	"fmt"
	"io"
)

// InvalidJsonError occurs when an env file is not a JSON object.
type InvalidJsonError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidJsonError) Error() string {
	return fmt.Sprintf("invalid json: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidJsonError) Unwrap() error {
	return e.Cause
}

// JSON decodes a JSON object of variable names to values. Numbers
// keep their literal form, e.g. 1.50 stays "1.50".
func JSON(r io.Reader) (Environ, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	m := make(map[string]any)
	err := dec.Decode(&m)
	if err != nil {
		return nil, InvalidJsonError{Cause: err}
	}
	return flatten(m)
}
