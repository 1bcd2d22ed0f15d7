// Package main applies the accesskit Postgres schema.
//
// It reads PG_* settings from the environment and an optional .env file.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/accesskit/pkg/config"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/pg"
	"github.com/dmitrymomot/accesskit/pkg/store/postgres"
)

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	purge := flag.Bool("purge-refresh-tokens", false, "delete expired refresh tokens after migrating")
	flag.Parse()

	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "accesskit-migrate"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, *envFile, *purge); err != nil {
		log.ErrorContext(ctx, "migration failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, envFile string, purge bool) error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := config.LoadEnv(files...); err != nil {
		return err
	}
	cfg, err := config.Parse[pg.Config]()
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, postgres.Migrations, postgres.MigrationsDir, cfg, log); err != nil {
		return err
	}

	if purge {
		n, err := postgres.NewCredentialStore(pool).PurgeExpiredRefreshTokens(ctx, time.Now())
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "expired refresh tokens purged", slog.Int64("count", n))
	}
	return nil
}
