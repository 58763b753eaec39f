// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package envorm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/z5labs/envorm/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type settings struct {
	Example  *Field[string]
	Count    *Field[int]
	Features *Field[[]string]
}

func (s settings) Fields() []Binding {
	return []Binding{
		Bind("example", s.Example),
		Bind("count", s.Count),
		Bind("features", s.Features),
	}
}

func TestNew(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		var nilField *Field[int]

		testCases := []struct {
			name      string
			schema    Bindings
			expectErr error
			index     int
		}{
			{
				name: "if an attribute name is empty",
				schema: Bindings{
					Bind("", String("STRING_EXAMPLE")),
				},
				expectErr: ErrEmptyAttr,
			},
			{
				name: "if an attribute name is bound twice",
				schema: Bindings{
					Bind("example", String("STRING_EXAMPLE")),
					Bind("other", String("OTHER")),
					Bind("example", Int("INT_EXAMPLE")),
				},
				expectErr: ErrDuplicateAttr,
				index:     2,
			},
			{
				name: "if a field is nil",
				schema: Bindings{
					Bind("count", nilField),
				},
				expectErr: ErrNilField,
			},
			{
				name: "if a binding has no field",
				schema: Bindings{
					Bind("count", nil),
				},
				expectErr: ErrNilField,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := New(context.Background(), tc.schema)

				var berr InvalidBindingError
				if !assert.ErrorAs(t, err, &berr) {
					return
				}
				if !assert.ErrorIs(t, err, tc.expectErr) {
					return
				}
				if !assert.Equal(t, tc.index, berr.Index) {
					return
				}
				if !assert.NotEmpty(t, berr.Error()) {
					return
				}
			})
		}
	})

	t.Run("will enumerate fields in declaration order", func(t *testing.T) {
		s := settings{
			Example:  String("STRING_EXAMPLE"),
			Count:    Int("INT_EXAMPLE"),
			Features: Strings("LIST_EXAMPLE_MULTIPLE"),
		}

		m, err := New(context.Background(), s, Source(baseEnv()))
		require.NoError(t, err)

		var attrs []string
		for _, info := range m.Fields() {
			attrs = append(attrs, info.Attr)
		}
		require.Equal(t, []string{"example", "count", "features"}, attrs)
		require.True(t, m.IsValid())
		require.Equal(t, map[string]any{
			"example":  "Result",
			"count":    1,
			"features": []string{"1", "2", "3"},
		}, m.AsMap())
	})
}

func TestModel_IsValid(t *testing.T) {
	testCases := []struct {
		name     string
		required bool
		isValid  bool
	}{
		{name: "required and missing", required: true, isValid: false},
		{name: "optional and missing", required: false, isValid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := String("STRING_EXAMPLE")
			if tc.required {
				f.Required()
			}

			m, err := New(context.Background(), Bindings{Bind("example", f)}, Source(config.Environ{}))
			require.NoError(t, err)
			require.Equal(t, tc.isValid, m.IsValid())
		})
	}

	t.Run("type errors cause an invalid model", func(t *testing.T) {
		m, err := New(
			context.Background(),
			Bindings{Bind("example", Int("STRING_EXAMPLE"))},
			Source(baseEnv()),
		)
		require.NoError(t, err)
		require.False(t, m.IsValid())
	})
}

func TestModel_Errors(t *testing.T) {
	t.Run("will record a missing required field", func(t *testing.T) {
		m, err := New(
			context.Background(),
			Bindings{Bind("example", String("STRING_EXAMPLE").Required())},
			Source(config.Environ{}),
		)
		require.NoError(t, err)

		require.Equal(t, []Record{
			{"field": "STRING_EXAMPLE", "required": true},
		}, m.Errors())
	})

	t.Run("will record every failure and still resolve the other fields", func(t *testing.T) {
		m, err := New(
			context.Background(),
			Bindings{
				Bind("count", Int("STRING_EXAMPLE")),
				Bind("flag", Bool("BOOLEAN_EXAMPLE")),
				Bind("token", String("TOKEN").Required()),
				Bind("mode", String("STRING_EXAMPLE", "field-value")),
				Bind("ratio", Float("FLOAT_EXAMPLE")),
			},
			Source(baseEnv()),
		)
		require.NoError(t, err)

		require.False(t, m.IsValid())
		require.Equal(t, []Record{
			{"field": "STRING_EXAMPLE", "value": "Result", "expected_type": "integer"},
			{"field": "TOKEN", "required": true},
			{"field": "STRING_EXAMPLE", "detail": Detail{Message: "should be one of [field-value], got Result"}},
		}, m.Errors())

		values := m.AsMap()
		require.Equal(t, true, values["flag"])
		require.Equal(t, 1.1, values["ratio"])
		require.Nil(t, values["count"])
		require.Nil(t, values["token"])
	})

	t.Run("will be joined by Err", func(t *testing.T) {
		m, err := New(
			context.Background(),
			Bindings{
				Bind("count", Int("STRING_EXAMPLE")),
				Bind("token", String("TOKEN").Required()),
			},
			Source(baseEnv()),
		)
		require.NoError(t, err)

		err = m.Err()
		var cerr ConvertError
		require.ErrorAs(t, err, &cerr)
		var rerr ValueRequiredError
		require.ErrorAs(t, err, &rerr)
		require.Equal(t, "TOKEN", rerr.Field)
	})

	t.Run("will be empty for a valid model", func(t *testing.T) {
		m, err := New(context.Background(), Bindings{Bind("count", Int("INT_EXAMPLE"))}, Source(baseEnv()))
		require.NoError(t, err)

		require.Empty(t, m.Errors())
		require.NoError(t, m.Err())
	})
}

func TestModel_Doc(t *testing.T) {
	m, err := New(
		context.Background(),
		Bindings{
			Bind("example", String("STRING_EXAMPLE").Required()),
			Bind("example1", String("STRING_EXAMPLE_1").Required().Default("hi")),
		},
		Source(config.Environ{}),
	)
	require.NoError(t, err)

	require.Equal(t, "STRING_EXAMPLE=\nSTRING_EXAMPLE_1=hi", m.Doc())
}

func TestModel_Describe(t *testing.T) {
	env := config.Environ{
		"PORT":    "9090",
		"HOSTS":   "a,b",
		"TIMEOUT": "1m",
	}

	m, err := New(
		context.Background(),
		Bindings{
			Bind("port", Int("PORT").Default(8080)),
			Bind("hosts", Strings("HOSTS")),
			Bind("timeout", Duration("TIMEOUT").Default(time.Second)),
			Bind("debug", Bool("DEBUG").Default(false)),
			Bind("name", String("NAME")),
		},
		Source(env),
	)
	require.NoError(t, err)

	require.Equal(t, "PORT=9090\nHOSTS=a,b\nTIMEOUT=1m0s\nDEBUG=false\nNAME=", m.Describe())
	require.Equal(t, "PORT=8080\nHOSTS=\nTIMEOUT=1s\nDEBUG=false\nNAME=", m.Doc())
}

func TestModel_Update(t *testing.T) {
	t.Run("will pick up environment changes", func(t *testing.T) {
		env := baseEnv()
		count := Int("INT_EXAMPLE")

		m, err := New(context.Background(), Bindings{Bind("count", count)}, Source(env))
		require.NoError(t, err)
		require.Equal(t, 1, m.AsMap()["count"])

		env["INT_EXAMPLE"] = "2"
		require.Equal(t, 1, m.AsMap()["count"])

		m.Update(context.Background())
		require.Equal(t, 2, m.AsMap()["count"])

		v, err := count.Value(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, v)
	})

	t.Run("will pick up process environment changes", func(t *testing.T) {
		t.Setenv("ENVORM_MODEL_UPDATE", "before")

		m, err := New(context.Background(), Bindings{Bind("value", String("ENVORM_MODEL_UPDATE"))})
		require.NoError(t, err)
		require.Equal(t, "before", m.AsMap()["value"])

		t.Setenv("ENVORM_MODEL_UPDATE", "after")
		m.Update(context.Background())
		require.Equal(t, "after", m.AsMap()["value"])
	})

	t.Run("will replace the errors of the previous pass", func(t *testing.T) {
		env := config.Environ{}

		m, err := New(context.Background(), Bindings{Bind("token", String("TOKEN").Required())}, Source(env))
		require.NoError(t, err)
		require.False(t, m.IsValid())

		env["TOKEN"] = "abc"
		m.Update(context.Background())
		require.True(t, m.IsValid())
		require.Empty(t, m.Errors())

		delete(env, "TOKEN")
		m.Update(context.Background())
		require.False(t, m.IsValid())
		require.Len(t, m.Errors(), 1)
	})

	t.Run("is safe to call concurrently with reads", func(t *testing.T) {
		m, err := New(context.Background(), Bindings{Bind("count", Int("INT_EXAMPLE"))}, Source(baseEnv()))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				m.Update(context.Background())
			}()
			go func() {
				defer wg.Done()
				_ = m.AsMap()
				_ = m.Describe()
			}()
		}
		wg.Wait()

		require.Equal(t, 1, m.AsMap()["count"])
	})
}

func TestModel_Decode(t *testing.T) {
	t.Run("will decode values into a struct", func(t *testing.T) {
		m, err := New(
			context.Background(),
			Bindings{
				Bind("port", Int("INT_EXAMPLE")),
				Bind("ratio", Float("FLOAT_EXAMPLE")),
				Bind("ids", List("LIST_EXAMPLE_MULTIPLE", strconv.Atoi)),
				Bind("timeout", Duration("TIMEOUT").Default(5*time.Second)),
				Bind("name", String("NAME")),
			},
			Source(baseEnv()),
		)
		require.NoError(t, err)

		cfg := struct {
			Port    int
			Ratio   float64 `config:"ratio"`
			IDs     []int   `config:"ids"`
			Timeout time.Duration
			Name    string
		}{
			Name: "unchanged",
		}
		err = m.Decode(&cfg)
		require.NoError(t, err)

		require.Equal(t, 1, cfg.Port)
		require.Equal(t, 1.1, cfg.Ratio)
		require.Equal(t, []int{1, 2, 3}, cfg.IDs)
		require.Equal(t, 5*time.Second, cfg.Timeout)
		require.Equal(t, "unchanged", cfg.Name)
	})

	t.Run("will return a DecodeError", func(t *testing.T) {
		t.Run("if the target is not a pointer", func(t *testing.T) {
			m, err := New(context.Background(), Bindings{Bind("port", Int("INT_EXAMPLE"))}, Source(baseEnv()))
			require.NoError(t, err)

			var cfg struct{ Port int }
			err = m.Decode(cfg)

			var derr DecodeError
			require.ErrorAs(t, err, &derr)
			require.NotEmpty(t, derr.Error())
		})

		t.Run("if a value does not fit the struct field", func(t *testing.T) {
			m, err := New(context.Background(), Bindings{Bind("port", String("STRING_EXAMPLE"))}, Source(baseEnv()))
			require.NoError(t, err)

			var cfg struct{ Port int }
			err = m.Decode(&cfg)

			var derr DecodeError
			require.ErrorAs(t, err, &derr)
		})
	})
}

func TestModel_tracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	m, err := New(
		context.Background(),
		Bindings{
			Bind("count", Int("STRING_EXAMPLE")),
			Bind("flag", Bool("BOOLEAN_EXAMPLE")),
		},
		Source(baseEnv()),
		TracerProvider(tp),
	)
	require.NoError(t, err)
	m.Update(context.Background())

	spans := sr.Ended()
	require.Len(t, spans, 2)

	span := spans[1]
	require.Equal(t, "Model.Update", span.Name())
	require.Equal(t, codes.Error, span.Status().Code)
	require.Contains(t, span.Attributes(), attribute.Int("envorm.fields", 2))
	require.Contains(t, span.Attributes(), attribute.Int("envorm.errors", 1))
	require.Len(t, span.Events(), 1)
	require.Equal(t, "exception", span.Events()[0].Name)
}

func TestModel_logging(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	_, err := New(
		context.Background(),
		Bindings{
			Bind("password", String("DB_PASSWORD").Secret()),
			Bind("port", Int("INT_EXAMPLE")),
			Bind("token", Int("API_TOKEN").Secret()),
		},
		Source(config.Environ{
			"DB_PASSWORD": "hunter2",
			"INT_EXAMPLE": "1",
			"API_TOKEN":   "s3cr3t",
		}),
		LogHandler(h),
	)
	require.NoError(t, err)

	var records []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &record))
		records = append(records, record)
	}
	require.Len(t, records, 4)

	require.Equal(t, "resolved field", records[0]["msg"])
	require.Equal(t, "password", records[0]["field"])
	require.Equal(t, "****", records[0]["DB_PASSWORD"])

	require.Equal(t, "resolved field", records[1]["msg"])
	require.Equal(t, "1", records[1]["INT_EXAMPLE"])

	require.Equal(t, "failed to resolve field", records[2]["msg"])
	require.Equal(t, "WARN", records[2]["level"])
	require.Equal(t, "****", records[2]["API_TOKEN"])
	require.NotContains(t, buf.String(), "s3cr3t")

	require.Equal(t, "built model", records[3]["msg"])
	require.Equal(t, float64(3), records[3]["fields"])
	require.Equal(t, float64(1), records[3]["errors"])
}

func TestSource(t *testing.T) {
	t.Run("will not change where a field reads from", func(t *testing.T) {
		port := Int("ENVORM_SOURCE_PORT")

		m1, err := New(
			context.Background(),
			Bindings{Bind("port", port)},
			Source(config.Environ{"ENVORM_SOURCE_PORT": "9"}),
		)
		require.NoError(t, err)
		require.Equal(t, 9, m1.AsMap()["port"])

		t.Setenv("ENVORM_SOURCE_PORT", "42")

		m2, err := New(context.Background(), Bindings{Bind("port", port)})
		require.NoError(t, err)
		require.Equal(t, 42, m2.AsMap()["port"])

		v, err := port.Update(context.Background())
		require.NoError(t, err)
		require.Equal(t, 42, v)
	})

	t.Run("will be used by every build pass of the model", func(t *testing.T) {
		t.Setenv("ENVORM_SOURCE_PORT", "42")

		env := config.Environ{"ENVORM_SOURCE_PORT": "9"}
		port := Int("ENVORM_SOURCE_PORT")

		m, err := New(context.Background(), Bindings{Bind("port", port)}, Source(env))
		require.NoError(t, err)

		env["ENVORM_SOURCE_PORT"] = "10"
		m.Update(context.Background())
		require.Equal(t, 10, m.AsMap()["port"])
	})
}
