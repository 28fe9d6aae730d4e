// Package postgres implements the metadata repos using PostgreSQL
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anupamd/picstore"
)

// Repo bundles the image and item repos sharing one connection pool.
type Repo struct {
	images *imageRepo
	items  *itemRepo
}

// NewRepo validates the table names and returns a Repo backed by pool.
func NewRepo(pool *pgxpool.Pool, tables picstore.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{
		images: &imageRepo{pool: pool, tableName: tables.Images},
		items:  &itemRepo{pool: pool, tableName: tables.Items},
	}, nil
}

// Images returns the image metadata repo.
func (r *Repo) Images() picstore.ImageRepo {
	return r.images
}

// Items returns the generic items repo.
func (r *Repo) Items() picstore.ItemRepo {
	return r.items
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.images.pool.Ping(ctx)
}

type imageRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

const imageColumns = `id, object_key, bucket, user_id, filename, content_type, description, visibility, tags, size_bytes, auto_created, created_at, updated_at`

func (r *imageRepo) Put(ctx context.Context, meta picstore.ImageMeta) error {
	tagsJSON, err := encodeTags(meta.Tags)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.tableName, imageColumns)

	_, err = r.pool.Exec(ctx, query,
		meta.ID, meta.ObjectKey, meta.Bucket, meta.UserID, meta.Filename,
		meta.ContentType, meta.Description, string(meta.Visibility), tagsJSON,
		meta.Size, meta.AutoCreated, meta.CreatedAt.UTC(), meta.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	return nil
}

func (r *imageRepo) Get(ctx context.Context, id uuid.UUID) (picstore.ImageMeta, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, imageColumns, r.tableName)

	row := r.pool.QueryRow(ctx, query, id)

	m, err := scanImage(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return picstore.ImageMeta{}, picstore.ErrNotFound
		}
		return picstore.ImageMeta{}, fmt.Errorf("get: %w", err)
	}

	return m, nil
}

func (r *imageRepo) FindByObject(ctx context.Context, bucket, objectKey string) (picstore.ImageMeta, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE bucket = $1 AND object_key = $2
	`, imageColumns, r.tableName)

	row := r.pool.QueryRow(ctx, query, bucket, objectKey)

	m, err := scanImage(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return picstore.ImageMeta{}, picstore.ErrNotFound
		}
		return picstore.ImageMeta{}, fmt.Errorf("find by object: %w", err)
	}

	return m, nil
}

func (r *imageRepo) List(ctx context.Context, q picstore.ImageQuery) (picstore.ImageList, error) {
	cursor, err := picstore.DecodeCursor(q.Cursor)
	if err != nil {
		return picstore.ImageList{}, fmt.Errorf("list: %w", err)
	}

	sortCol := "created_at"
	if q.SortBy == picstore.SortByFilename {
		sortCol = "filename"
	}

	dir, cmp := "ASC", ">"
	if q.Descending {
		dir, cmp = "DESC", "<"
	}

	var conds []string
	var args []any

	ph := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.UserID != "" {
		conds = append(conds, "user_id = "+ph(q.UserID))
	}
	if q.Visibility != picstore.VisibilityAll {
		conds = append(conds, "visibility = "+ph(string(q.Visibility)))
	}
	if q.Filename != "" {
		conds = append(conds, fmt.Sprintf("filename LIKE '%%' || %s || '%%'", ph(picstore.EscapeLikePattern(q.Filename))))
	}
	if !q.DateFrom.IsZero() {
		conds = append(conds, "created_at >= "+ph(q.DateFrom.UTC()))
	}
	if !q.DateTo.IsZero() {
		conds = append(conds, "created_at <= "+ph(q.DateTo.UTC()))
	}
	if q.Cursor != "" {
		sortArg, cursorErr := cursorSortArg(sortCol, cursor)
		if cursorErr != nil {
			return picstore.ImageList{}, fmt.Errorf("list: %w", cursorErr)
		}
		conds = append(conds, fmt.Sprintf("(%s, id) %s (%s, %s)", sortCol, cmp, ph(sortArg), ph(cursor.ID)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s %s ORDER BY %s %s, id %s LIMIT %s
	`, imageColumns, r.tableName, where, sortCol, dir, dir, ph(q.Limit+1))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return picstore.ImageList{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	images := make([]picstore.ImageMeta, 0, q.Limit)
	for rows.Next() {
		m, scanErr := scanImage(rows.Scan)
		if scanErr != nil {
			return picstore.ImageList{}, fmt.Errorf("list: scan: %w", scanErr)
		}
		images = append(images, m)
	}

	if err := rows.Err(); err != nil {
		return picstore.ImageList{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextToken string
	if len(images) > q.Limit {
		// Cursor points to the last item of the current page
		last := images[q.Limit-1]
		sortValue := last.Filename
		if sortCol == "created_at" {
			sortValue = last.CreatedAt.UTC().Format(picstore.TimestampFormat)
		}
		nextToken = picstore.EncodeCursor(sortValue, last.ID)
		images = images[:q.Limit]
	}

	return picstore.ImageList{Images: images, Count: len(images), NextToken: nextToken}, nil
}

// cursorSortArg converts the cursor's opaque sort value into a query
// argument of the sort column's type.
func cursorSortArg(sortCol string, cursor picstore.Cursor) (any, error) {
	if sortCol != "created_at" {
		return cursor.SortValue, nil
	}

	ts, err := time.Parse(picstore.TimestampFormat, cursor.SortValue)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return ts, nil
}

func (r *imageRepo) Update(ctx context.Context, id uuid.UUID, patch picstore.ImagePatch) (picstore.ImageMeta, error) {
	var sets []string
	var args []any

	ph := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Description != nil {
		sets = append(sets, "description = "+ph(*patch.Description))
	}
	if patch.Visibility != nil {
		sets = append(sets, "visibility = "+ph(string(*patch.Visibility)))
	}
	if patch.Tags != nil {
		tagsJSON, err := encodeTags(*patch.Tags)
		if err != nil {
			return picstore.ImageMeta{}, fmt.Errorf("update: %w", err)
		}
		sets = append(sets, "tags = "+ph(tagsJSON))
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE %s SET %s WHERE id = %s
		RETURNING %s
	`, r.tableName, strings.Join(sets, ", "), ph(id), imageColumns)

	row := r.pool.QueryRow(ctx, query, args...)

	m, err := scanImage(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return picstore.ImageMeta{}, picstore.ErrNotFound
		}
		return picstore.ImageMeta{}, fmt.Errorf("update: %w", err)
	}

	return m, nil
}

func (r *imageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1
	`, r.tableName)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", picstore.ErrNotFound)
	}

	return nil
}

type itemRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *itemRepo) Put(ctx context.Context, item picstore.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, r.tableName)

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.Content, item.CreatedAt.UTC(), item.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	return nil
}

func (r *itemRepo) Get(ctx context.Context, id uuid.UUID) (picstore.Item, error) {
	query := fmt.Sprintf(`
		SELECT id, content, created_at, updated_at FROM %s WHERE id = $1
	`, r.tableName)

	var item picstore.Item
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Content, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return picstore.Item{}, picstore.ErrNotFound
		}
		return picstore.Item{}, fmt.Errorf("get: %w", err)
	}

	return item, nil
}

func (r *itemRepo) List(ctx context.Context) ([]picstore.Item, error) {
	query := fmt.Sprintf(`
		SELECT id, content, created_at, updated_at FROM %s ORDER BY created_at, id
	`, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := []picstore.Item{}
	for rows.Next() {
		var item picstore.Item
		if err := rows.Scan(&item.ID, &item.Content, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return items, nil
}

func (r *itemRepo) Update(ctx context.Context, id uuid.UUID, content string) (picstore.Item, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET content = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, content, created_at, updated_at
	`, r.tableName)

	var item picstore.Item
	err := r.pool.QueryRow(ctx, query, content, id).Scan(
		&item.ID, &item.Content, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return picstore.Item{}, picstore.ErrNotFound
		}
		return picstore.Item{}, fmt.Errorf("update: %w", err)
	}

	return item, nil
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1
	`, r.tableName)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", picstore.ErrNotFound)
	}

	return nil
}

func scanImage(scan func(dest ...any) error) (picstore.ImageMeta, error) {
	var m picstore.ImageMeta
	var visibility, tagsJSON string

	err := scan(
		&m.ID, &m.ObjectKey, &m.Bucket, &m.UserID, &m.Filename, &m.ContentType,
		&m.Description, &visibility, &tagsJSON, &m.Size, &m.AutoCreated,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return picstore.ImageMeta{}, err
	}

	m.Visibility = picstore.Visibility(visibility)

	if err = json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
		return picstore.ImageMeta{}, fmt.Errorf("parse tags: %w", err)
	}

	return m, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}

	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}

	return string(data), nil
}
