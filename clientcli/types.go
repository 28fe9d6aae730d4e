package clientcli

import (
	"time"

	"github.com/google/uuid"
)

// UploadOptions configures an image upload operation.
type UploadOptions struct {
	LocalPath   string
	UserID      string
	Description string
	Visibility  string   // empty lets the server default to public
	Tags        []string
	ContentType string // optional, auto-detect if empty
	Recursive   bool
}

// UploadResult represents the result of uploading a single image.
type UploadResult struct {
	LocalPath string    `json:"local_path"`
	ID        uuid.UUID `json:"id"`
	ObjectKey string    `json:"object_key"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size_bytes"`
	Err       error     `json:"-"` // nil on success
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	IDs []string
}

// DeleteResult represents the result of deleting a single image.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListOptions configures a list operation.
type ListOptions struct {
	UserID     string
	Tag        string
	Visibility string
	Filename   string
	Sort       string
	Order      string
	Limit      int
	NextToken  string
	All        bool // auto-paginate through all results
}

// ListResult contains paginated list results.
type ListResult struct {
	Images    []ImageInfo `json:"images"`
	NextToken string      `json:"nextToken,omitempty"`
}

// ImageInfo represents metadata for a single image.
type ImageInfo struct {
	ID          uuid.UUID `json:"id"`
	ObjectKey   string    `json:"objectKey"`
	Bucket      string    `json:"bucket"`
	UserID      string    `json:"userId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Description string    `json:"description"`
	Visibility  string    `json:"visibility"`
	Tags        []string  `json:"tags"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// serverListResult mirrors the JSON response from the server for list operations.
type serverListResult struct {
	Images    []ImageInfo `json:"images"`
	Count     int         `json:"count"`
	NextToken string      `json:"nextToken,omitempty"`
}
