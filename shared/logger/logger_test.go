package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"cnpgdemo/config"
	"cnpgdemo/shared/constant"
	"cnpgdemo/shared/logger"
)

func TestInitLogger(t *testing.T) {
	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()

	defer func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	}()

	for _, env := range []string{constant.ServerEnvDevelopment, constant.ServerEnvProduction} {
		logger.InitLogger(env)

		assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
		assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())
	}
}

func TestErrorWithStack(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger.ErrorWithStack(errors.New("pool exhausted"))

	assert.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), "pool exhausted")
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{name: "debug level", logLevel: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "info level", logLevel: "info", expectedLevel: zerolog.InfoLevel},
		{name: "warn level", logLevel: "warn", expectedLevel: zerolog.WarnLevel},
		{name: "error level", logLevel: "error", expectedLevel: zerolog.ErrorLevel},
		{name: "disabled level", logLevel: "disabled", expectedLevel: zerolog.Disabled},
		{name: "invalid level defaults to info", logLevel: "loud", expectedLevel: zerolog.InfoLevel},
		{name: "empty level uses NoLevel", logLevel: "", expectedLevel: zerolog.NoLevel},
	}

	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()

	defer func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.Logger = zerolog.New(&buf)

			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.logLevel

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.expectedLevel, zerolog.GlobalLevel())
		})
	}
}
