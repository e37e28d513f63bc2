package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"cnpgdemo/config"
	"cnpgdemo/di"
	"cnpgdemo/helper"
	"cnpgdemo/infras/postgres"
	"cnpgdemo/shared/logger"
	"cnpgdemo/shared/timezone"
)

//go:generate go run github.com/swaggo/swag/cmd/swag init -g cmd/app/main.go -d ../.. -o ../../docs --outputTypes go

// @title CloudNativePG Demo API
// @version 1.0.0
// @description Item CRUD in front of a primary and a read replica.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.InitLogger(cfg.Server.Env)
	logger.SetLogLevel(cfg)
	timezone.Init(cfg.App.Timezone)

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		if err := helper.Up(ctx, cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	http, cleanup, err := di.InitializeService(cfg)
	if err != nil {
		var startupErr *postgres.StartupError
		if errors.As(err, &startupErr) {
			log.Fatal().Err(err).Str("database", startupErr.Name).Int("attempts", startupErr.Attempts).
				Msg("Database unreachable at startup")
		}

		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer cleanup()

	if err := http.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server stopped with error")
	}
}
