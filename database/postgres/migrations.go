package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anupamd/picstore"
)

func Migrate(ctx context.Context, pool *pgxpool.Pool, tables picstore.Tables) error {
	if err := createImagesTable(ctx, pool, tables.Images); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Images, err)
	}

	if err := createItemsTable(ctx, pool, tables.Items); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Items, err)
	}

	return nil
}

func DropTables(ctx context.Context, pool *pgxpool.Pool, tables picstore.Tables) error {
	for _, tableName := range []string{tables.Items, tables.Images} {
		quotedTable := pgx.Identifier{tableName}.Sanitize()
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable)); err != nil {
			return fmt.Errorf("migrate down %s: %w", tableName, err)
		}
	}

	return nil
}

func createImagesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexUser := pgx.Identifier{fmt.Sprintf("idx_%s_user", tableName)}.Sanitize()
	indexCreatedList := pgx.Identifier{fmt.Sprintf("idx_%s_created_list", tableName)}.Sanitize()
	indexFilenameList := pgx.Identifier{fmt.Sprintf("idx_%s_filename_list", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			object_key TEXT NOT NULL,
			bucket TEXT NOT NULL,
			user_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			content_type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			visibility TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			size_bytes BIGINT NOT NULL,
			auto_created BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (bucket, object_key)
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (user_id);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (created_at, id);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (filename, id);
	`,
		quotedTable,
		indexUser, quotedTable,
		indexCreatedList, quotedTable,
		indexFilenameList, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create images table: %w", err)
	}
	return nil
}

func createItemsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, quotedTable)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	return nil
}
