package picstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamd/picstore"
)

func TestVisibility_IsValid(t *testing.T) {
	assert.True(t, picstore.VisibilityPublic.IsValid())
	assert.True(t, picstore.VisibilityPrivate.IsValid())
	assert.True(t, picstore.VisibilityFriends.IsValid())

	// "all" is a query-only value, not a storable visibility
	assert.False(t, picstore.VisibilityAll.IsValid())
	assert.False(t, picstore.Visibility("").IsValid())
	assert.False(t, picstore.Visibility("everyone").IsValid())
}

func TestParseVisibility(t *testing.T) {
	v, err := picstore.ParseVisibility("friends")
	require.NoError(t, err)
	assert.Equal(t, picstore.VisibilityFriends, v)

	_, err = picstore.ParseVisibility("all")
	assert.Error(t, err)

	_, err = picstore.ParseVisibility("")
	assert.Error(t, err)
}

func TestSortField_IsValid(t *testing.T) {
	assert.True(t, picstore.SortByCreatedAt.IsValid())
	assert.True(t, picstore.SortByFilename.IsValid())
	assert.False(t, picstore.SortField("size").IsValid())
	assert.False(t, picstore.SortField("").IsValid())
}

func TestImagePatch_IsEmpty(t *testing.T) {
	assert.True(t, picstore.ImagePatch{}.IsEmpty())

	desc := "hi"
	assert.False(t, picstore.ImagePatch{Description: &desc}.IsEmpty())

	vis := picstore.VisibilityPrivate
	assert.False(t, picstore.ImagePatch{Visibility: &vis}.IsEmpty())

	tags := []string{}
	assert.False(t, picstore.ImagePatch{Tags: &tags}.IsEmpty())
}
