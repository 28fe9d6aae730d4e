package picstore_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamd/picstore"
)

func TestCursor_RoundTrip(t *testing.T) {
	id := uuid.New()
	token := picstore.EncodeCursor("2024-05-15T12:30:45.123456789Z", id)

	cursor, err := picstore.DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-15T12:30:45.123456789Z", cursor.SortValue)
	assert.Equal(t, id, cursor.ID)
}

func TestCursor_SortValueWithPipes(t *testing.T) {
	// Filenames may contain the separator; the uuid is always last
	id := uuid.New()
	token := picstore.EncodeCursor("weird|file|name.png", id)

	cursor, err := picstore.DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "weird|file|name.png", cursor.SortValue)
	assert.Equal(t, id, cursor.ID)
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := picstore.DecodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, picstore.Cursor{}, cursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := picstore.DecodeCursor("not base64 at all!!!")
	assert.Error(t, err)

	// Valid base64 but no separator
	_, err = picstore.DecodeCursor("aGVsbG8=")
	assert.Error(t, err)

	// Valid base64, separator present, garbage uuid
	token := picstore.EncodeCursor("x", uuid.New())
	corrupted := token[:len(token)-8] + "AAAAAAAA"
	_, err = picstore.DecodeCursor(corrupted)
	assert.Error(t, err)
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `100\%`, picstore.EscapeLikePattern("100%"))
	assert.Equal(t, `my\_file`, picstore.EscapeLikePattern("my_file"))
	assert.Equal(t, `back\\slash`, picstore.EscapeLikePattern(`back\slash`))
	assert.Equal(t, "plain", picstore.EscapeLikePattern("plain"))
}

func TestIsValidTableName(t *testing.T) {
	assert.True(t, picstore.IsValidTableName("picstore_images"))
	assert.True(t, picstore.IsValidTableName("_hidden"))
	assert.True(t, picstore.IsValidTableName("t2"))

	assert.False(t, picstore.IsValidTableName(""))
	assert.False(t, picstore.IsValidTableName("2table"))
	assert.False(t, picstore.IsValidTableName("Images"))
	assert.False(t, picstore.IsValidTableName("images; drop table users"))
	assert.False(t, picstore.IsValidTableName(strings.Repeat("a", 64)))
}

func TestTables_Validate(t *testing.T) {
	tables := picstore.Tables{Images: "images", Items: "items"}
	assert.NoError(t, tables.Validate())

	assert.Error(t, picstore.Tables{Images: "images"}.Validate())
	assert.Error(t, picstore.Tables{Images: "Bad-Name", Items: "items"}.Validate())
}
