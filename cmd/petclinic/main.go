// Command petclinic serves the pet clinic web application.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/R3E-Network/petclinic/internal/app/runtime"
	"github.com/R3E-Network/petclinic/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration file")
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *migrateOnly); err != nil {
		log.Fatalf("petclinic: %v", err)
	}
}

func run(ctx context.Context, configPath string, migrateOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr := runtime.NewLogger(cfg.Logging)

	if migrateOnly {
		_, err := runtime.Migrate(ctx, cfg, logr)
		return err
	}

	application, err := runtime.NewApplication(cfg, logr)
	if err != nil {
		return err
	}

	runErr := application.Run(ctx)
	logr.Info("shutting down")
	if err := application.Shutdown(context.Background()); err != nil {
		logr.WithError(err).Error("shutdown failed")
	}
	return runErr
}
