// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/z5labs/envorm"
	"github.com/z5labs/envorm/config"
	"github.com/z5labs/envorm/envcmd"
	"github.com/z5labs/envorm/pkg/otelconfig"

	"github.com/spf13/viper"
)

type settings struct {
	Port     *envorm.Field[int]
	Mode     *envorm.Field[string]
	Hosts    *envorm.Field[[]string]
	Password *envorm.Field[string]
}

func (s settings) Fields() []envorm.Binding {
	return []envorm.Binding{
		envorm.Bind("port", s.Port),
		envorm.Bind("mode", s.Mode),
		envorm.Bind("hosts", s.Hosts),
		envorm.Bind("password", s.Password),
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	logHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(logHandler)

	otelCfg := otelconfig.Env(otelconfig.Writer(os.Stderr))
	otelModel, err := envorm.New(ctx, otelCfg)
	if err != nil {
		log.ErrorContext(ctx, "malformed otel settings", slog.Any("error", err))
		return 1
	}
	if !otelModel.IsValid() {
		log.ErrorContext(ctx, "invalid otel settings", slog.Any("error", otelModel.Err()))
		return 1
	}

	tp, shutdown, err := otelCfg.Init(ctx)
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize tracing", slog.Any("error", err))
		return 1
	}
	defer shutdown(context.Background())

	v := viper.New()
	v.SetEnvPrefix("simple")
	v.AutomaticEnv()

	s := settings{
		Port:     envorm.Int("PORT").Default(8080),
		Mode:     envorm.String("MODE", "dev", "prod").Default("dev"),
		Hosts:    envorm.Strings("ALLOWED_HOSTS"),
		Password: envorm.String("DB_PASSWORD").Required().Secret(),
	}
	m, err := envorm.New(
		ctx,
		s,
		envorm.Source(config.Viper(v)),
		envorm.LogHandler(logHandler),
		envorm.TracerProvider(tp),
	)
	if err != nil {
		log.ErrorContext(ctx, "malformed settings", slog.Any("error", err))
		return 1
	}

	err = envcmd.New(m, envcmd.Short("Inspect the environment of the simple example")).ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ierr envcmd.InvalidModelError
	if !errors.As(err, &ierr) {
		log.ErrorContext(ctx, "command failed", slog.Any("error", err))
	}
	return 1
}
