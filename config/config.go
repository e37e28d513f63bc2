package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config is the process-wide configuration. It is loaded once by Load and
// handed to every constructor that needs it; nothing reads it globally.
//
// Nested fields fall back to their bare tag name, so APP_PORT, PRIMARY_DB_URL
// and friends work without the group prefix. Tags are never generic names
// like HOST or PORT, which shells and platforms set for their own use.
type Config struct {
	Server struct {
		Env                   string `envconfig:"ENV" default:"production"`
		LogLevel              string `envconfig:"LOG_LEVEL" default:"info"`
		Host                  string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
		Port                  string `envconfig:"APP_PORT" default:"8000"`
		RequestTimeoutSeconds int    `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"30"`
		Shutdown              struct {
			GracePeriodSeconds int64 `envconfig:"GRACE_PERIOD_SECONDS" default:"10"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name          string `envconfig:"APP_NAME" default:"cloudnativepg-demo"`
		Timezone      string `envconfig:"TIMEZONE" default:"UTC"`
		EnableMetrics bool   `envconfig:"ENABLE_METRICS" default:"true"`
		MaxListLimit  int    `envconfig:"MAX_LIST_LIMIT" default:"0"`
		CORS          struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS" default:"true"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS" default:"*"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
			Enable           bool     `envconfig:"ENABLE" default:"true"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS" default:"300"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE" default:"false"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS" default:"100"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"1"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"REDIS_HOST" default:"localhost"`
				Port     string `envconfig:"REDIS_PORT" default:"6379"`
				Password string `envconfig:"REDIS_PASSWORD"`
				DB       int    `envconfig:"REDIS_DB" default:"0"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
	} `envconfig:"CACHE"`

	DB struct {
		PrimaryURL             string `envconfig:"PRIMARY_DB_URL" required:"true"`
		ReplicaURL             string `envconfig:"REPLICA_DB_URL" required:"true"`
		MaxRetry               int    `envconfig:"MAX_RETRY" default:"3"`
		RetryWaitSeconds       int    `envconfig:"RETRY_WAIT_SECONDS" default:"4"`
		RetryMaxWaitSeconds    int    `envconfig:"RETRY_MAX_WAIT_SECONDS" default:"10"`
		MaxOpenConns           int    `envconfig:"MAX_OPEN_CONNS" default:"10"`
		MaxIdleConns           int    `envconfig:"MAX_IDLE_CONNS" default:"10"`
		ConnMaxLifetimeSeconds int    `envconfig:"CONN_MAX_LIFETIME_SECONDS" default:"300"`
		HealthTimeoutSeconds   int    `envconfig:"HEALTH_TIMEOUT_SECONDS" default:"2"`
		AutoMigrate            bool   `envconfig:"AUTO_MIGRATE" default:"true"`
		MigrationTable         string `envconfig:"MIGRATION_TABLE" default:"schema_migrations"`
	} `envconfig:"DB"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
	}
}

// Load reads an optional .env file into the environment and decodes the
// environment into a fresh Config.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
	} else {
		log.Info().Msg("Successfully loaded variables from .env file into environment")
	}

	var conf Config
	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("processing environment variables: %w", err)
	}

	log.Info().Str("app", conf.App.Name).Msg("Service configuration initialized successfully")

	return &conf, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.DB.HealthTimeoutSeconds) * time.Second
}

func (c *Config) ShutdownGracePeriod() time.Duration {
	return time.Duration(c.Server.Shutdown.GracePeriodSeconds) * time.Second
}
