package picstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImageMeta is the metadata record kept for every stored image.
type ImageMeta struct {
	ID          uuid.UUID  `json:"id"`
	ObjectKey   string     `json:"objectKey"`
	Bucket      string     `json:"bucket"`
	UserID      string     `json:"userId"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Description string     `json:"description"`
	Visibility  Visibility `json:"visibility"`
	Tags        []string   `json:"tags"`
	Size        int64      `json:"size"`
	AutoCreated bool       `json:"autoCreated,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ImageUpload carries a decoded image payload plus caller-supplied metadata
// on its way into the upload pipeline.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
	UserID      string
	Description string
	Visibility  Visibility
	Tags        []string
}

// ImagePatch holds the updateable subset of image metadata. Nil fields are
// left untouched.
type ImagePatch struct {
	Description *string
	Visibility  *Visibility
	Tags        *[]string
}

// IsEmpty reports whether the patch would change nothing.
func (p ImagePatch) IsEmpty() bool {
	return p.Description == nil && p.Visibility == nil && p.Tags == nil
}

// SortField selects the attribute an image listing is ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByFilename  SortField = "filename"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByFilename:
		return true
	default:
		return false
	}
}

// ImageQuery describes the filters for an image listing.
//
// Visibility defaults to public; VisibilityAll disables the filter. Tag
// filtering happens after the page is fetched, so pages may come back
// shorter than Limit when a tag filter is active.
type ImageQuery struct {
	UserID     string
	Tag        string
	Visibility Visibility
	Filename   string
	DateFrom   time.Time
	DateTo     time.Time
	SortBy     SortField
	Descending bool
	Limit      int
	Cursor     string
}

// ImageList is one page of an image listing.
type ImageList struct {
	Images    []ImageMeta `json:"images"`
	Count     int         `json:"count"`
	NextToken string      `json:"nextToken,omitempty"`
}

// Item is a generic text record in the key-value table.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileUploadResult summarizes a completed file upload.
type FileUploadResult struct {
	Filename  string `json:"filename"`
	ObjectKey string `json:"object_key"`
	Bucket    string `json:"bucket"`
	Size      int64  `json:"size"`
}

// ObjectInfo is the result of a Head call against the object store.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// Visibility controls who may see an image.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"

	// VisibilityAll is only meaningful in queries: it disables the
	// visibility filter entirely.
	VisibilityAll Visibility = "all"
)

func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFriends:
		return true
	default:
		return false
	}
}

func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid visibility: %s (valid values: public, private, friends)", s)
	}
	return v, nil
}
