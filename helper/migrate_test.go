package helper_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnpgdemo/helper"
	"cnpgdemo/migrations"
)

func TestParseAction(t *testing.T) {
	for _, value := range []string{"up", "down", "step-up", "drop"} {
		action, err := helper.ParseAction(value)
		require.NoError(t, err)
		assert.Equal(t, helper.Action(value), action)
	}

	_, err := helper.ParseAction("sideways")
	assert.ErrorIs(t, err, helper.ErrUnknownAction)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.Postgres, "postgres/*.sql")
	require.NoError(t, err)

	assert.Contains(t, files, "postgres/000001_create_items_table.up.sql")
	assert.Contains(t, files, "postgres/000001_create_items_table.down.sql")
}
