package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamd/picstore"
	"github.com/anupamd/picstore/database/sqlite"

	_ "modernc.org/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates repos with unique table names for test isolation
func setupTestRepo(t *testing.T) (*sqlite.Repo, func()) {
	t.Helper()

	ctx := context.Background()

	tables := picstore.Tables{
		Images: fmt.Sprintf("images_%s", getRandomString(t)),
		Items:  fmt.Sprintf("items_%s", getRandomString(t)),
	}

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open")

	// A second pool connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)

	err = sqlite.Migrate(ctx, db, tables)
	require.NoError(t, err, "failed to migrate")

	err = sqlite.ValidateSchema(ctx, db, tables)
	require.NoError(t, err, "failed to validate schema")

	repo, err := sqlite.NewRepo(db, tables)
	require.NoError(t, err, "failed to create repo")

	cleanup := func() {
		_ = db.Close()
	}

	return repo, cleanup
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
