package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamd/picstore"
)

func TestImageRepo_PutGetRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)

	ctx := context.Background()
	images := repo.Images()

	meta := testImage("user1", "photo.jpg", time.Now().UTC())
	meta.Description = "a photo"
	meta.Tags = []string{"vacation"}

	require.NoError(t, images.Put(ctx, meta))

	got, err := images.Get(ctx, meta.ID)
	require.NoError(t, err)

	assert.Equal(t, meta.ID, got.ID)
	assert.Equal(t, meta.ObjectKey, got.ObjectKey)
	assert.Equal(t, "a photo", got.Description)
	assert.Equal(t, []string{"vacation"}, got.Tags)
	assert.Equal(t, picstore.VisibilityPublic, got.Visibility)
	assert.WithinDuration(t, meta.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestImageRepo_GetNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Images().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, picstore.ErrNotFound)
}

func TestImageRepo_FindByObject(t *testing.T) {
	repo := setupTestRepo(t)

	ctx := context.Background()
	images := repo.Images()

	meta := testImage("u", "photo.jpg", time.Now().UTC())
	require.NoError(t, images.Put(ctx, meta))

	got, err := images.FindByObject(ctx, meta.Bucket, meta.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, got.ID)

	_, err = images.FindByObject(ctx, meta.Bucket, "missing")
	assert.ErrorIs(t, err, picstore.ErrNotFound)
}

func TestImageRepo_ListFiltersAndPagination(t *testing.T) {
	repo := setupTestRepo(t)

	ctx := context.Background()
	images := repo.Images()
	base := time.Now().UTC()

	filenames := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}
	for i, fn := range filenames {
		require.NoError(t, images.Put(ctx, testImage("alice", fn, base.Add(time.Duration(i)*time.Second))))
	}
	private := testImage("alice", "secret.jpg", base.Add(time.Hour))
	private.Visibility = picstore.VisibilityPrivate
	require.NoError(t, images.Put(ctx, private))

	q := picstore.ImageQuery{
		UserID:     "alice",
		Visibility: picstore.VisibilityPublic,
		SortBy:     picstore.SortByCreatedAt,
		Limit:      3,
	}

	first, err := images.List(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 3, first.Count)
	require.NotEmpty(t, first.NextToken)
	assert.Equal(t, "a.jpg", first.Images[0].Filename)

	q.Cursor = first.NextToken
	second, err := images.List(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, second.Count)
	assert.Equal(t, "d.jpg", second.Images[0].Filename)
	assert.Empty(t, second.NextToken)
}

func TestImageRepo_ListSortByFilename(t *testing.T) {
	repo := setupTestRepo(t)

	ctx := context.Background()
	images := repo.Images()
	base := time.Now().UTC()

	require.NoError(t, images.Put(ctx, testImage("u", "bravo.jpg", base)))
	require.NoError(t, images.Put(ctx, testImage("u", "alpha.jpg", base.Add(time.Second))))

	result, err := images.List(ctx, picstore.ImageQuery{
		Visibility: picstore.VisibilityPublic,
		SortBy:     picstore.SortByFilename,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, "alpha.jpg", result.Images[0].Filename)
}

func TestImageRepo_UpdateAndDelete(t *testing.T) {
	repo := setupTestRepo(t)

	ctx := context.Background()
	images := repo.Images()

	meta := testImage("u", "photo.jpg", time.Now().UTC().Add(-time.Minute))
	require.NoError(t, images.Put(ctx, meta))

	desc := "new description"
	got, err := images.Update(ctx, meta.ID, picstore.ImagePatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	assert.Equal(t, meta.Filename, got.Filename)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.NoError(t, images.Delete(ctx, meta.ID))
	assert.ErrorIs(t, images.Delete(ctx, meta.ID), picstore.ErrNotFound)

	_, err = images.Update(ctx, meta.ID, picstore.ImagePatch{Description: &desc})
	assert.ErrorIs(t, err, picstore.ErrNotFound)
}

func TestItemRepo_CRUD(t *testing.T) {
	repo := setupTestRepo(t)

	ctx := context.Background()
	items := repo.Items()

	now := time.Now().UTC()
	item := picstore.Item{ID: uuid.New(), Content: "hello", CreatedAt: now, UpdatedAt: now}

	require.NoError(t, items.Put(ctx, item))

	got, err := items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	updated, err := items.Update(ctx, item.ID, "changed")
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content)

	all, err := items.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, items.Delete(ctx, item.ID))
	_, err = items.Get(ctx, item.ID)
	assert.ErrorIs(t, err, picstore.ErrNotFound)
}
