// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package envorm

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/z5labs/envorm/internal/try"
)

// Type names reported by ConvertError.ExpectedType.
const (
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeBoolean  = "boolean"
	TypeDuration = "duration"
	TypeList     = "list"
)

// String returns a field whose value is the raw variable. If any choices
// are given, Validate fails unless the value is one of them.
func String(name string, choices ...string) *Field[string] {
	f := newField(name, TypeString, Identity, func(s string) string { return s })
	if len(choices) > 0 {
		f.Validator(oneOf(choices))
	}
	return f
}

// Int returns a field whose value is parsed as a base 10 integer.
func Int(name string) *Field[int] {
	return newField(name, TypeInteger, parseInt, strconv.Itoa)
}

// Float returns a field whose value is parsed as a 64-bit floating point number.
func Float(name string) *Field[float64] {
	return newField(name, TypeFloat, parseFloat, formatFloat)
}

// Bool returns a field which only accepts "true" or "false", in any case.
func Bool(name string) *Field[bool] {
	return newField(name, TypeBoolean, parseBool, strconv.FormatBool)
}

// Duration returns a field whose value is parsed by [time.ParseDuration].
func Duration(name string) *Field[time.Duration] {
	return newField(name, TypeDuration, time.ParseDuration, time.Duration.String)
}

// List returns a field whose value is split on commas, with each element
// converted by factory. If any element fails to convert, the whole field
// fails and the ConvertError carries the entire raw value.
func List[E any](name string, factory func(string) (E, error)) *Field[[]E] {
	return newField(name, TypeList, splitWith(factory), joinList[E])
}

// Strings returns a List field whose elements are left as is.
func Strings(name string) *Field[[]string] {
	return List(name, Identity)
}

// Identity is the element factory which returns its input unchanged.
func Identity(s string) (string, error) {
	return s, nil
}

// Numbers may be surrounded by whitespace, e.g. " 12 ".
func parseInt(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%q is neither true nor false", s)
	}
}

func splitWith[E any](factory func(string) (E, error)) func(string) ([]E, error) {
	return func(s string) ([]E, error) {
		parts := strings.Split(s, ",")
		es := make([]E, 0, len(parts))
		for _, part := range parts {
			e, err := try.Call(func() (E, error) {
				return factory(part)
			})
			if err != nil {
				return nil, err
			}
			es = append(es, e)
		}
		return es, nil
	}
}

func joinList[E any](es []E) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = fmt.Sprint(e)
	}
	return strings.Join(parts, ",")
}

func oneOf(choices []string) func(string) error {
	choices = slices.Clone(choices)
	allowed := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		allowed[choice] = struct{}{}
	}
	return func(s string) error {
		if _, ok := allowed[s]; ok {
			return nil
		}
		return fmt.Errorf("should be one of [%s], got %s", strings.Join(choices, ", "), s)
	}
}
