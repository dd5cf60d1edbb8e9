package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/app"
	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/platform/config"
	db "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/storage"
)

const (
	modeHTTP      = "http"
	modeDaily     = "daily"
	modeScheduler = "scheduler"
)

func main() {
	mode := flag.String("mode", modeHTTP, "Service mode (http, daily, scheduler)")
	once := flag.Bool("once", false, "Run the daily alerts once and exit (same as --mode=daily)")

	flag.Parse()

	if *once {
		*mode = modeDaily
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var database *db.DB

	if cfg.PostgresDSN != "" {
		poolOpts := db.PoolOptions{
			MaxConns:          cfg.MaxConnections,
			MinConns:          cfg.MinConnections,
			MaxConnIdleTime:   cfg.MaxConnIdleTime,
			MaxConnLifetime:   cfg.MaxConnLifetime,
			HealthCheckPeriod: cfg.HealthCheckPeriod,
		}

		database, err = db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close()

		if cfg.Migrate {
			if err := database.Migrate(ctx); err != nil {
				logger.Fatal().Err(err).Msg("failed to run migrations")
			}
		}
	} else {
		logger.Warn().Msg("POSTGRES_DSN not set, anomaly endpoints and the daily run are disabled")
	}

	application := app.New(cfg, database, &logger)

	if err := runMode(ctx, application, *mode); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string) error {
	switch mode {
	case modeHTTP:
		return application.RunHTTP(ctx)
	case modeDaily:
		return application.RunDaily(ctx)
	case modeScheduler:
		return application.RunScheduler(ctx)
	default:
		log.Fatalf("Usage: %s --mode=[http|daily|scheduler]", os.Args[0])

		return nil
	}
}
