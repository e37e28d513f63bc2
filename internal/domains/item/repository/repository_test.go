package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnpgdemo/config"
	"cnpgdemo/helper"
	"cnpgdemo/infras/otel/mocks"
	"cnpgdemo/infras/postgres"
	"cnpgdemo/internal/domains/item/model"
	"cnpgdemo/internal/domains/item/repository"
	gDto "cnpgdemo/shared/dto"
	"cnpgdemo/shared/failure"
	gModel "cnpgdemo/shared/model"
	"cnpgdemo/shared/timezone"
)

// setup needs a disposable database; the items table is truncated.
func setup(t *testing.T) (*postgres.Connection, repository.Item) {
	t.Helper()

	dsn := os.Getenv("TEST_PRIMARY_DB_URL")
	if dsn == "" {
		t.Skip("TEST_PRIMARY_DB_URL not set, skipping repository integration test")
	}

	cfg := &config.Config{}
	cfg.DB.PrimaryURL = dsn
	cfg.DB.MaxRetry = 1
	cfg.DB.MigrationTable = "schema_migrations"

	ctx := context.Background()
	require.NoError(t, helper.Up(ctx, cfg))

	opts := postgres.OptionsFromConfig(cfg)

	db, err := postgres.Connect(ctx, "primary", dsn, opts)
	require.NoError(t, err)

	conn := &postgres.Connection{Primary: db, Replica: db}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, "TRUNCATE TABLE "+model.TableName+" RESTART IDENTITY")
	require.NoError(t, err)

	return conn, repository.New(mocks.NewOtel())
}

func TestItemRepository_Lifecycle(t *testing.T) {
	conn, repo := setup(t)
	ctx := context.Background()

	exec := conn.Primary

	now := timezone.Now()
	created, err := repo.Insert(ctx, exec, model.Item{Title: "A", Timestamps: timestampsAt(now)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "A", created.Title)
	assert.Nil(t, created.Description)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	description := "d"
	patched := created
	patched.Description = &description
	patched.UpdatedAt = created.UpdatedAt

	updated, err := repo.Update(ctx, exec, patched)
	require.NoError(t, err)

	assert.Equal(t, "A", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "d", *updated.Description)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	_, err = repo.Get(ctx, exec, 2)
	assert.True(t, failure.IsNotFound(err))

	require.NoError(t, repo.Delete(ctx, exec, created.ID))

	_, err = repo.Get(ctx, exec, created.ID)
	assert.True(t, failure.IsNotFound(err))

	assert.True(t, failure.IsNotFound(repo.Delete(ctx, exec, created.ID)))

	_, err = repo.Update(ctx, exec, patched)
	assert.True(t, failure.IsNotFound(err))
}

func TestItemRepository_List(t *testing.T) {
	conn, repo := setup(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third", "fourth"} {
		_, err := repo.Insert(ctx, conn.Primary, model.Item{Title: title, Timestamps: timestampsAt(timezone.Now())})
		require.NoError(t, err)
	}

	items, err := repo.List(ctx, conn.Replica, gDto.Pagination{Skip: 0, Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Title)
	assert.Equal(t, "second", items[1].Title)

	items, err = repo.List(ctx, conn.Replica, gDto.Pagination{Skip: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "second", items[0].Title)

	items, err = repo.List(ctx, conn.Replica, gDto.Pagination{Skip: 10, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemRepository_GetForUpdate(t *testing.T) {
	conn, repo := setup(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, conn.Primary, model.Item{Title: "A", Timestamps: timestampsAt(timezone.Now())})
	require.NoError(t, err)

	err = postgres.WithSession(ctx, conn, postgres.RolePrimary, func(session postgres.Session) error {
		return session.Transact(ctx, func(exec postgres.Executor) error {
			locked, err := repo.GetForUpdate(ctx, exec, created.ID)
			if err != nil {
				return err
			}

			assert.Equal(t, created.ID, locked.ID)

			_, err = repo.GetForUpdate(ctx, exec, created.ID+100)
			assert.True(t, failure.IsNotFound(err))

			return nil
		})
	})
	require.NoError(t, err)
}

func timestampsAt(now time.Time) gModel.Timestamps {
	return gModel.Timestamps{CreatedAt: now, UpdatedAt: now}
}
