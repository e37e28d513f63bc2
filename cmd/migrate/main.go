package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"cnpgdemo/config"
	"cnpgdemo/helper"
	"cnpgdemo/shared/logger"
)

const (
	argLength = 2
)

func main() {
	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down/step-up/drop) is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.InitLogger(cfg.Server.Env)
	logger.SetLogLevel(cfg)

	action, err := helper.ParseAction(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid direction. Use 'up', 'down', 'drop' or 'step-up'")
	}

	if err := helper.Runner(context.Background(), cfg, action); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
