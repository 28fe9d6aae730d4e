package picstore

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileObjectKey builds a unique object key for a plain file upload:
// the original name, a UTC timestamp, and a short unique suffix, so
// repeated uploads of the same filename never collide.
//
//	report.pdf -> report_20240515_123045_a1b2c3d4.pdf
func FileObjectKey(filename string, id uuid.UUID, now time.Time) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	stamp := now.UTC().Format("20060102_150405")
	return base + "_" + stamp + "_" + id.String()[:8] + ext
}

// ImageObjectKey builds a unique object key for an image upload. Image keys
// embed the full RFC 3339 timestamp with ':' and '.' flattened to '-' plus
// the first eight characters of the image ID.
func ImageObjectKey(filename string, id uuid.UUID, now time.Time) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	stamp := now.UTC().Format("2006-01-02T15:04:05.000000")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return base + "_" + stamp + "_" + id.String()[:8] + ext
}

// fileKeyPattern matches keys produced by FileObjectKey so the original
// filename can be recovered from objects uploaded through the API.
var fileKeyPattern = regexp.MustCompile(`^(.+)_\d{8}_\d{6}_[a-f0-9]{8}(\.[a-zA-Z0-9]+)$`)

// OriginalFilename recovers the uploader's filename from an object key.
// Keys that do not follow the generated naming pattern (objects dropped
// straight into the bucket) are returned unchanged.
func OriginalFilename(objectKey string) string {
	m := fileKeyPattern.FindStringSubmatch(objectKey)
	if m == nil {
		return objectKey
	}
	return m[1] + m[2]
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
}

// IsImageFile reports whether a filename looks like an image based on its
// extension.
func IsImageFile(filename string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}
