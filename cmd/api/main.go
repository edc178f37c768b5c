package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/breachradar/breach-risk-backend/internal/api/rest"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/config"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/telemetry"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to YAML config file")
		runMigrations = flag.Bool("migrate", false, "run database migrations and exit")
		migrationsDir = flag.String("migrations", "migrations", "path to migration files")
	)
	flag.Parse()

	if err := run(*configPath, *runMigrations, *migrationsDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, runMigrations bool, migrationsDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if runMigrations {
		return migrateUp(cfg, migrationsDir)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}
	zapLogger, err := telemetry.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setting up zap logger: %w", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	otelProvider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "breach-risk-backend",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer otelProvider.Shutdown(ctx)

	server, err := rest.NewServer(cfg, logger, zapLogger)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	return server.Start()
}

func migrateUp(cfg *config.Config, dir string) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("migrations require database.url to be set")
	}

	m, err := migrate.New("file://"+dir, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}
