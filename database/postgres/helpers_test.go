package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/anupamd/picstore"
	"github.com/anupamd/picstore/database/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testCleanup  func()
)

// getSharedTestDatabase returns a shared database pool for all tests.
// This significantly improves test performance by reusing the same container.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		testCleanup = func() {
			if testPool != nil {
				testPool.Close()
			}
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %s", err)
			}
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testCleanup()
			t.Fatalf("failed to get connection string: %v", err)
		}

		pool, err := pgxpool.New(ctx, connectionStr)
		if err != nil {
			testCleanup()
			t.Fatalf("could not connect to database: %v", err)
		}

		testPool = pool
	})

	return testPool
}

// getRandomString generates a random string for unique test identifiers.
func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// dropTestTable drops the specified table for test cleanup.
func dropTestTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", quotedTable)
	_, err := pool.Exec(ctx, sql)
	return err
}

// setupTestRepo creates repos with unique table names for test isolation.
func setupTestRepo(t *testing.T) *postgres.Repo {
	t.Helper()

	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tables := picstore.Tables{
		Images: fmt.Sprintf("images_%s", getRandomString(t)),
		Items:  fmt.Sprintf("items_%s", getRandomString(t)),
	}

	err := postgres.Migrate(ctx, pool, tables)
	require.NoError(t, err, "failed to migrate")

	err = postgres.ValidateSchema(ctx, pool, tables)
	require.NoError(t, err, "failed to validate schema")

	repo, err := postgres.NewRepo(pool, tables)
	require.NoError(t, err, "failed to create repo")

	t.Cleanup(func() {
		_ = dropTestTable(ctx, pool, tables.Images)
		_ = dropTestTable(ctx, pool, tables.Items)
	})

	return repo
}

// testImage builds a valid metadata record with the given overridable fields.
func testImage(userID, filename string, createdAt time.Time) picstore.ImageMeta {
	id := uuid.New()
	return picstore.ImageMeta{
		ID:          id,
		ObjectKey:   fmt.Sprintf("%s_%s", filename, id.String()[:8]),
		Bucket:      "test-bucket",
		UserID:      userID,
		Filename:    filename,
		ContentType: "image/jpeg",
		Visibility:  picstore.VisibilityPublic,
		Tags:        []string{},
		Size:        1024,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}
