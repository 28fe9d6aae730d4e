package picstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ObjectStore defines the interface for binary payload storage. The bucket
// is fixed at construction time; keys address objects within it.
//
// Implementations must be safe for concurrent use and should respect
// context cancellation.
type ObjectStore interface {
	// Put stores an object under key. An existing object is overwritten.
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error

	// Head returns the content type and size of a stored object.
	// Returns ErrNotFound if the object does not exist.
	Head(ctx context.Context, key string) (ObjectInfo, error)

	// Delete removes an object. Deleting a missing object is not an error
	// for S3-compatible stores; implementations may return ErrNotFound
	// when they can tell.
	Delete(ctx context.Context, key string) error
}

// Service wires the upload pipeline together: multipart/JSON uploads go to
// the object store, metadata records go to the repos, and storage events
// backfill records for objects that bypassed the API.
type Service struct {
	images ImageRepo
	items  ItemRepo
	store  ObjectStore
	bucket string
	now    func() time.Time
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	// Bucket is the object store bucket name, echoed in responses and
	// stored in metadata records.
	Bucket string
}

func NewService(images ImageRepo, items ItemRepo, store ObjectStore, cfg ServiceConfig) (*Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("new service: %w: bucket cannot be empty", ErrInvalidInput)
	}
	return &Service{
		images: images,
		items:  items,
		store:  store,
		bucket: cfg.Bucket,
		now:    time.Now,
	}, nil
}

// UploadFile stores a plain file upload in the object store under a unique
// key derived from the original filename. No metadata record is written;
// the storage event backfill takes care of that for objects that need one.
func (s *Service) UploadFile(ctx context.Context, filename string, content []byte) (FileUploadResult, error) {
	if err := ctx.Err(); err != nil {
		return FileUploadResult{}, fmt.Errorf("upload file: %w", err)
	}

	if filename == "" {
		return FileUploadResult{}, fmt.Errorf("upload file: %w: filename cannot be empty", ErrInvalidInput)
	}
	if len(content) == 0 {
		return FileUploadResult{}, fmt.Errorf("upload file: %w: content cannot be empty", ErrInvalidInput)
	}

	key := FileObjectKey(filename, uuid.New(), s.now())

	err := s.store.Put(ctx, key, bytes.NewReader(content), int64(len(content)), "application/octet-stream")
	if err != nil {
		return FileUploadResult{}, fmt.Errorf("upload file %s: %w", key, err)
	}

	slog.Info("file uploaded", "bucket", s.bucket, "key", key, "size", len(content))

	return FileUploadResult{
		Filename:  filename,
		ObjectKey: key,
		Bucket:    s.bucket,
		Size:      int64(len(content)),
	}, nil
}

// UploadImage stores an image in the object store and writes its metadata
// record. If the record cannot be written the stored object is deleted
// again so no orphaned payloads accumulate.
func (s *Service) UploadImage(ctx context.Context, up ImageUpload) (ImageMeta, error) {
	if err := ctx.Err(); err != nil {
		return ImageMeta{}, fmt.Errorf("upload image: %w", err)
	}

	if up.Filename == "" || up.UserID == "" || up.ContentType == "" {
		return ImageMeta{}, fmt.Errorf("upload image: %w: filename, userId and contentType are required", ErrInvalidInput)
	}
	if len(up.Content) == 0 {
		return ImageMeta{}, fmt.Errorf("upload image: %w: content cannot be empty", ErrInvalidInput)
	}

	visibility := up.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	if !visibility.IsValid() {
		return ImageMeta{}, fmt.Errorf("upload image: %w: invalid visibility %q", ErrInvalidInput, up.Visibility)
	}

	id := uuid.New()
	now := s.now().UTC()
	key := ImageObjectKey(up.Filename, id, now)

	err := s.store.Put(ctx, key, bytes.NewReader(up.Content), int64(len(up.Content)), up.ContentType)
	if err != nil {
		return ImageMeta{}, fmt.Errorf("upload image %s: %w", key, err)
	}

	tags := up.Tags
	if tags == nil {
		tags = []string{}
	}

	meta := ImageMeta{
		ID:          id,
		ObjectKey:   key,
		Bucket:      s.bucket,
		UserID:      up.UserID,
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Description: up.Description,
		Visibility:  visibility,
		Tags:        tags,
		Size:        int64(len(up.Content)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if putErr := s.images.Put(ctx, meta); putErr != nil {
		// Use background context for cleanup since original context may be cancelled
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if delErr := s.store.Delete(cleanupCtx, key); delErr != nil {
			return ImageMeta{}, fmt.Errorf("upload image %s: metadata put failed (%w) and cleanup failed: %w", key, putErr, delErr)
		}
		return ImageMeta{}, fmt.Errorf("upload image %s: metadata put failed: %w", key, putErr)
	}

	slog.Info("image uploaded", "bucket", s.bucket, "key", key, "id", id)

	return meta, nil
}

func (s *Service) GetImage(ctx context.Context, id uuid.UUID) (ImageMeta, error) {
	if err := ctx.Err(); err != nil {
		return ImageMeta{}, fmt.Errorf("get image: %w", err)
	}

	meta, err := s.images.Get(ctx, id)
	if err != nil {
		return ImageMeta{}, fmt.Errorf("get image: %w", err)
	}

	return meta, nil
}

// ListImages returns a filtered page of image metadata. The query is
// normalized first: out-of-range limits fall back to 10, unknown sort
// fields to createdAt, and visibility defaults to public. Tag filtering is
// applied to the fetched page, so a page can come back shorter than the
// limit when a tag filter is active.
func (s *Service) ListImages(ctx context.Context, q ImageQuery) (ImageList, error) {
	if err := ctx.Err(); err != nil {
		return ImageList{}, fmt.Errorf("list images: %w", err)
	}

	q = normalizeImageQuery(q)

	result, err := s.images.List(ctx, q)
	if err != nil {
		return ImageList{}, fmt.Errorf("list images: %w", err)
	}

	if q.Tag != "" {
		filtered := result.Images[:0:0]
		for _, img := range result.Images {
			for _, tag := range img.Tags {
				if tag == q.Tag {
					filtered = append(filtered, img)
					break
				}
			}
		}
		result.Images = filtered
	}

	result.Count = len(result.Images)
	return result, nil
}

func normalizeImageQuery(q ImageQuery) ImageQuery {
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}
	if !q.SortBy.IsValid() {
		q.SortBy = SortByCreatedAt
	}
	if q.Visibility == "" {
		q.Visibility = VisibilityPublic
	}
	return q
}

func (s *Service) UpdateImage(ctx context.Context, id uuid.UUID, patch ImagePatch) (ImageMeta, error) {
	if err := ctx.Err(); err != nil {
		return ImageMeta{}, fmt.Errorf("update image: %w", err)
	}

	if patch.IsEmpty() {
		return ImageMeta{}, fmt.Errorf("update image: %w: no fields to update", ErrInvalidInput)
	}
	if patch.Visibility != nil && !patch.Visibility.IsValid() {
		return ImageMeta{}, fmt.Errorf("update image: %w: invalid visibility %q", ErrInvalidInput, *patch.Visibility)
	}

	meta, err := s.images.Update(ctx, id, patch)
	if err != nil {
		return ImageMeta{}, fmt.Errorf("update image: %w", err)
	}

	return meta, nil
}

// DeleteImage removes the stored object and then the metadata record. An
// object already missing from the store is not an error; the record is the
// source of truth.
func (s *Service) DeleteImage(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	meta, err := s.images.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if delErr := s.store.Delete(ctx, meta.ObjectKey); delErr != nil && !errors.Is(delErr, ErrNotFound) {
		return fmt.Errorf("delete image %s: %w", meta.ObjectKey, delErr)
	}

	if err := s.images.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	return nil
}

func (s *Service) CreateItem(ctx context.Context, content string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}

	if content == "" {
		return Item{}, fmt.Errorf("create item: %w: content cannot be empty", ErrInvalidInput)
	}

	now := s.now().UTC()
	item := Item{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.items.Put(ctx, item); err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}

	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}

	item, err := s.items.Get(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, content string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, fmt.Errorf("update item: %w", err)
	}

	if content == "" {
		return Item{}, fmt.Errorf("update item: %w: content cannot be empty", ErrInvalidInput)
	}

	item, err := s.items.Update(ctx, id, content)
	if err != nil {
		return Item{}, fmt.Errorf("update item: %w", err)
	}

	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	return nil
}

// ProcessStorageEvent handles an object-store notification. For every
// object-created record it backfills a metadata row when none references
// the object yet - that covers objects dropped into the bucket without
// going through the API. Backfill failures for one record are logged and
// do not stop the remaining records.
func (s *Service) ProcessStorageEvent(ctx context.Context, n Notification) ([]ProcessedObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process storage event: %w", err)
	}

	if len(n.Records) == 0 {
		return nil, fmt.Errorf("process storage event: %w: no storage records in event", ErrInvalidInput)
	}

	processed := make([]ProcessedObject, 0, len(n.Records))

	for _, rec := range n.Records {
		if !rec.IsObjectCreated() {
			continue
		}

		bucket := rec.S3.Bucket.Name
		key := rec.S3.Object.DecodedKey()
		size := rec.S3.Object.Size

		_, err := s.images.FindByObject(ctx, bucket, key)
		switch {
		case errors.Is(err, ErrNotFound):
			if backfillErr := s.backfillMetadata(ctx, bucket, key, size); backfillErr != nil {
				slog.Error("failed to backfill metadata", "bucket", bucket, "key", key, "err", backfillErr)
			}
		case err != nil:
			slog.Error("failed to look up metadata", "bucket", bucket, "key", key, "err", err)
		}

		if IsImageFile(key) {
			s.ProcessImage(ctx, bucket, key)
		}

		processed = append(processed, ProcessedObject{
			ObjectKey: key,
			Bucket:    bucket,
			Size:      size,
			EventTime: rec.EventTime,
		})

		slog.Info("storage object processed", "bucket", bucket, "key", key, "size", size)
	}

	return processed, nil
}

func (s *Service) backfillMetadata(ctx context.Context, bucket, key string, size int64) error {
	contentType := "application/octet-stream"
	if info, err := s.store.Head(ctx, key); err == nil {
		if info.ContentType != "" {
			contentType = info.ContentType
		}
	} else {
		slog.Warn("could not stat object, using default content type", "key", key, "err", err)
	}

	now := s.now().UTC()
	meta := ImageMeta{
		ID:          uuid.New(),
		ObjectKey:   key,
		Bucket:      bucket,
		UserID:      "system",
		Filename:    OriginalFilename(key),
		ContentType: contentType,
		Visibility:  VisibilityPrivate,
		Tags:        []string{},
		Size:        size,
		AutoCreated: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.images.Put(ctx, meta); err != nil {
		return fmt.Errorf("backfill %s: %w", key, err)
	}

	slog.Info("metadata backfilled", "bucket", bucket, "key", key, "id", meta.ID)
	return nil
}

// ProcessImage is a placeholder for image post-processing (thumbnails,
// EXIF extraction). It currently only logs.
func (s *Service) ProcessImage(ctx context.Context, bucket, key string) {
	slog.Info("processing image", "bucket", bucket, "key", key)
}
