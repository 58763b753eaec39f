// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// UnsupportedFileError occurs when File does not know how to decode
// the file at Path.
type UnsupportedFileError struct {
	Path string
}

// Error implements the [builtin.error] interface.
func (e UnsupportedFileError) Error() string {
	return fmt.Sprintf("unsupported env file: %s", e.Path)
}

// InvalidValueError occurs when an env file maps Name to a value
// which is neither a scalar nor a list of scalars.
type InvalidValueError struct {
	Name  string
	Value any
}

// Error implements the [builtin.error] interface.
func (e InvalidValueError) Error() string {
	return fmt.Sprintf("env file value for %s is not a scalar or list of scalars: %v", e.Name, e.Value)
}

// File reads a flat document of variable names to values from fsys.
// The format is chosen by the file extension: .yaml, .yml or .json.
func File(fsys fs.FS, name string) (env Environ, err error) {
	var decode func(io.Reader) (Environ, error)
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		decode = YAML
	case ".json":
		decode = JSON
	default:
		return nil, UnsupportedFileError{Path: name}
	}

	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	return decode(f)
}

// flatten renders every value the way it would appear in a real
// environment. Lists are joined with commas and nulls are dropped.
func flatten(m map[string]any) (Environ, error) {
	env := make(Environ, len(m))
	for name, v := range m {
		if v == nil {
			continue
		}

		s, ok := scalar(v)
		if ok {
			env[name] = s
			continue
		}

		vs, ok := v.([]any)
		if !ok {
			return nil, InvalidValueError{Name: name, Value: v}
		}

		elems := make([]string, len(vs))
		for i, elem := range vs {
			s, ok := scalar(elem)
			if !ok {
				return nil, InvalidValueError{Name: name, Value: v}
			}
			elems[i] = s
		}
		env[name] = strings.Join(elems, ",")
	}
	return env, nil
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool, int, int64, uint64, float64, fmt.Stringer:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}
