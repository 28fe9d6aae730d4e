package picstore_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/anupamd/picstore"
)

func TestFileObjectKey(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	now := time.Date(2024, 5, 15, 12, 30, 45, 0, time.UTC)

	key := picstore.FileObjectKey("report.pdf", id, now)
	assert.Equal(t, "report_20240515_123045_a1b2c3d4.pdf", key)
}

func TestFileObjectKey_NoExtension(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	now := time.Date(2024, 5, 15, 12, 30, 45, 0, time.UTC)

	key := picstore.FileObjectKey("README", id, now)
	assert.Equal(t, "README_20240515_123045_a1b2c3d4", key)
}

func TestFileObjectKey_ConvertsToUTC(t *testing.T) {
	id := uuid.New()
	loc := time.FixedZone("UTC+2", 2*3600)
	local := time.Date(2024, 5, 15, 14, 30, 45, 0, loc)

	key := picstore.FileObjectKey("a.txt", id, local)
	assert.Contains(t, key, "20240515_123045")
}

func TestImageObjectKey(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	now := time.Date(2024, 5, 15, 12, 30, 45, 123456000, time.UTC)

	key := picstore.ImageObjectKey("cat.png", id, now)
	assert.Equal(t, "cat_2024-05-15T12-30-45-123456_a1b2c3d4.png", key)
}

func TestOriginalFilename_RoundTrip(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	key := picstore.FileObjectKey("vacation photo.jpg", id, now)
	assert.Equal(t, "vacation photo.jpg", picstore.OriginalFilename(key))
}

func TestOriginalFilename_PassthroughForForeignKeys(t *testing.T) {
	// Objects dropped straight into the bucket keep their key as filename
	assert.Equal(t, "raw/dump.bin", picstore.OriginalFilename("raw/dump.bin"))
	assert.Equal(t, "cat.png", picstore.OriginalFilename("cat.png"))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, picstore.IsImageFile("cat.png"))
	assert.True(t, picstore.IsImageFile("photos/CAT.JPG"))
	assert.True(t, picstore.IsImageFile("a.webp"))
	assert.False(t, picstore.IsImageFile("report.pdf"))
	assert.False(t, picstore.IsImageFile("noext"))
}
