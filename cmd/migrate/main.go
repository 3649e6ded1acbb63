package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"basegraph.app/workspaces/common/logger"
	"basegraph.app/workspaces/core/config"
	"basegraph.app/workspaces/core/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeMigrate)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg)

	if err := migrate.Run(cfg.DB.DSN, migrate.Direction(*direction)); err != nil {
		slog.ErrorContext(ctx, "migration failed", "direction", *direction, "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "migrations applied", "direction", *direction)
}
