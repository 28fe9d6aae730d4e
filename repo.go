package picstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageRepo defines the interface for image metadata persistence.
//
// All methods accept a context for cancellation and timeout control.
// Implementations should respect context cancellation and return
// ErrNotFound for missing records.
type ImageRepo interface {
	// Put stores a new metadata record.
	Put(ctx context.Context, meta ImageMeta) error

	// Get retrieves a metadata record by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (ImageMeta, error)

	// FindByObject retrieves the record for a stored object by its bucket
	// and object key. Returns ErrNotFound if no record references it.
	FindByObject(ctx context.Context, bucket, objectKey string) (ImageMeta, error)

	// List retrieves a filtered, ordered page of metadata records. The
	// cursor in the query and the NextToken in the result are opaque.
	List(ctx context.Context, q ImageQuery) (ImageList, error)

	// Update applies a patch to a record, bumps its updatedAt, and returns
	// the updated record. Returns ErrNotFound if absent.
	Update(ctx context.Context, id uuid.UUID, patch ImagePatch) (ImageMeta, error)

	// Delete removes a metadata record. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepo defines the interface for generic text item persistence.
type ItemRepo interface {
	Put(ctx context.Context, item Item) error
	Get(ctx context.Context, id uuid.UUID) (Item, error)
	List(ctx context.Context) ([]Item, error)
	// Update replaces the item's content, bumps updatedAt, and returns the
	// updated record. Returns ErrNotFound if absent.
	Update(ctx context.Context, id uuid.UUID, content string) (Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Tables holds configurable table names for metadata storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Images string `mapstructure:"images"`
	Items  string `mapstructure:"items"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	for _, name := range []string{t.Images, t.Items} {
		if name == "" {
			return errors.New("validate tables: table name cannot be empty")
		}
		if !IsValidTableName(name) {
			return fmt.Errorf("validate tables: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
		}
	}
	return nil
}

// Cursor represents pagination cursor data for image list operations. The
// sort value is the created-at timestamp or the filename, depending on the
// query's sort field; the ID breaks ties.
type Cursor struct {
	SortValue string
	ID        uuid.UUID
}

// EncodeCursor encodes cursor data to an opaque base64 token.
func EncodeCursor(sortValue string, id uuid.UUID) string {
	data := sortValue + "|" + id.String()
	return base64.URLEncoding.EncodeToString([]byte(data))
}

// DecodeCursor decodes a pagination token back to cursor data. An empty
// token decodes to the zero Cursor.
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", err)
	}

	// The sort value may itself contain pipes; the uuid is fixed-form, so
	// split from the right.
	i := strings.LastIndex(string(decoded), "|")
	if i < 0 {
		return Cursor{}, fmt.Errorf("decode cursor: invalid format")
	}

	id, err := uuid.Parse(string(decoded)[i+1:])
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid id: %w", err)
	}

	return Cursor{SortValue: string(decoded)[:i], ID: id}, nil
}

// EscapeLikePattern escapes special LIKE characters (%, _, \) to prevent SQL injection.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// TimestampFormat is how repos store and compare timestamps.
const TimestampFormat = time.RFC3339Nano
