// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package envcmd exposes an envorm.Model as a command line tool.
package envcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"

	"github.com/z5labs/envorm"

	"github.com/spf13/cobra"
)

// Option configures the command returned by New.
type Option func(*cobra.Command)

// Name sets the name of the root command. It defaults to the base
// name of the running executable.
func Name(name string) Option {
	return func(cmd *cobra.Command) {
		cmd.Use = name
	}
}

// Short sets the short description of the root command.
func Short(desc string) Option {
	return func(cmd *cobra.Command) {
		cmd.Short = desc
	}
}

// InvalidModelError is returned by the check command when the
// environment does not satisfy the model.
type InvalidModelError struct {
	Errors int
}

// Error implements the [builtin.error] interface.
func (e InvalidModelError) Error() string {
	return fmt.Sprintf("environment is invalid: %d field(s) failed", e.Errors)
}

// New returns a command with the following subcommands:
//
//   - doc prints the default of every variable
//   - describe prints the current value of every variable, masking secrets
//   - check rebuilds the model and prints each failure as a JSON line,
//     masking the values of secret variables
func New(m *envorm.Model, opts ...Option) *cobra.Command {
	var name string
	if len(os.Args) > 0 {
		name = filepath.Base(os.Args[0])
	}

	cmd := &cobra.Command{
		Use:           name,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, opt := range opts {
		opt(cmd)
	}

	cmd.AddCommand(
		docCmd(m),
		describeCmd(m),
		checkCmd(m),
	)
	return cmd
}

func docCmd(m *envorm.Model) *cobra.Command {
	return &cobra.Command{
		Use:   "doc",
		Short: "Print every variable with its default value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeLine(cmd.OutOrStdout(), m.Doc())
		},
	}
}

func describeCmd(m *envorm.Model) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print every variable with its current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Update(cmd.Context())

			out := cmd.OutOrStdout()
			for _, info := range m.Fields() {
				value := info.Current
				if info.Secret && value != "" && !showSecrets {
					value = "****"
				}

				err := writeLine(out, info.Env+"="+value)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the values of secret variables")
	return cmd
}

func checkCmd(m *envorm.Model) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Update(cmd.Context())

			records := m.Errors()
			if !showSecrets {
				records = maskRecords(records, secretNames(m))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, rec := range records {
				err := enc.Encode(rec)
				if err != nil {
					return err
				}
			}
			if len(records) > 0 {
				return InvalidModelError{Errors: len(records)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the values of secret variables")
	return cmd
}

func secretNames(m *envorm.Model) map[string]struct{} {
	names := make(map[string]struct{})
	for _, info := range m.Fields() {
		if info.Secret {
			names[info.Env] = struct{}{}
		}
	}
	return names
}

// maskRecords hides every key of a secret field's record which may
// carry its raw value.
func maskRecords(records []envorm.Record, secrets map[string]struct{}) []envorm.Record {
	masked := make([]envorm.Record, len(records))
	for i, rec := range records {
		masked[i] = rec

		name, _ := rec["field"].(string)
		if _, ok := secrets[name]; !ok {
			continue
		}

		rec = maps.Clone(rec)
		for key := range rec {
			switch key {
			case "field", "required", "expected_type":
			default:
				rec[key] = "****"
			}
		}
		masked[i] = rec
	}
	return masked
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
