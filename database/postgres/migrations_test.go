package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamd/picstore"
	"github.com/anupamd/picstore/database/postgres"
)

func TestMigrate_Idempotent(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tables := picstore.Tables{
		Images: fmt.Sprintf("images_%s", getRandomString(t)),
		Items:  fmt.Sprintf("items_%s", getRandomString(t)),
	}
	t.Cleanup(func() {
		_ = dropTestTable(ctx, pool, tables.Images)
		_ = dropTestTable(ctx, pool, tables.Items)
	})

	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	assert.NoError(t, postgres.Migrate(ctx, pool, tables), "migrate should be idempotent")
	assert.NoError(t, postgres.ValidateSchema(ctx, pool, tables))
}

func TestValidateSchema_MissingTable(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tables := picstore.Tables{
		Images: fmt.Sprintf("images_%s", getRandomString(t)),
		Items:  fmt.Sprintf("items_%s", getRandomString(t)),
	}

	err := postgres.ValidateSchema(ctx, pool, tables)
	assert.Error(t, err, "validate should fail without tables")
}

func TestDropTables(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tables := picstore.Tables{
		Images: fmt.Sprintf("images_%s", getRandomString(t)),
		Items:  fmt.Sprintf("items_%s", getRandomString(t)),
	}

	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	require.NoError(t, postgres.DropTables(ctx, pool, tables))

	err := postgres.ValidateSchema(ctx, pool, tables)
	assert.Error(t, err, "tables should be gone")
}
