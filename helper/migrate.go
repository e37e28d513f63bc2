package helper

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"cnpgdemo/config"
	"cnpgdemo/infras/postgres"
	"cnpgdemo/migrations"
)

type Action string

const (
	ActionUp     Action = "up"
	ActionDown   Action = "down"
	ActionStepUp Action = "step-up"
	ActionDrop   Action = "drop"
)

const (
	migrationSourceName = "iofs"
	migrationSourceDir  = "postgres"
	migrationDriverName = "postgres"
)

var ErrUnknownAction = errors.New("unknown migration action")

func ParseAction(value string) (Action, error) {
	switch action := Action(value); action {
	case ActionUp, ActionDown, ActionStepUp, ActionDrop:
		return action, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, value)
	}
}

// getConnection opens a dedicated primary connection for the migrator. The
// migrator owns it and closes it, so the application pools are never touched.
func getConnection(ctx context.Context, cfg *config.Config) (*migrate.Migrate, error) {
	db, err := postgres.Connect(ctx, "migration", cfg.DB.PrimaryURL, postgres.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	source, err := iofs.New(migrations.Postgres, migrationSourceDir)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("error opening embedded migrations: %w", err)
	}

	driver, err := migratePostgres.WithInstance(db.DB, &migratePostgres.Config{
		MigrationsTable: cfg.DB.MigrationTable,
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("error creating migration driver: %w", err)
	}

	mig, err := migrate.NewWithInstance(migrationSourceName, source, migrationDriverName, driver)
	if err != nil {
		_ = driver.Close()

		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func Runner(ctx context.Context, cfg *config.Config, action Action) error {
	mig, err := getConnection(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if sourceErr, dbErr := mig.Close(); sourceErr != nil || dbErr != nil {
			log.Error().AnErr("source", sourceErr).AnErr("database", dbErr).Msg("failed to close migrator")
		}
	}()

	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDown:
		err = mig.Steps(-1)
	case ActionDrop:
		err = mig.Down()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migration %s: %w", action, err)
	}

	version, dirty, versionErr := mig.Version()
	if versionErr != nil && !errors.Is(versionErr, migrate.ErrNilVersion) {
		return fmt.Errorf("error reading migration version: %w", versionErr)
	}

	log.Info().Str("action", string(action)).Uint("version", version).Bool("dirty", dirty).Msg("Database migrations completed successfully")

	return nil
}

func Up(ctx context.Context, cfg *config.Config) error {
	return Runner(ctx, cfg, ActionUp)
}
