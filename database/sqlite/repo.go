// Package sqlite implements the metadata repos using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anupamd/picstore"
)

// Repo bundles the image and item repos sharing one connection.
type Repo struct {
	images *imageRepo
	items  *itemRepo
}

// NewRepo validates the table names and returns a Repo backed by db.
func NewRepo(db *sql.DB, tables picstore.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{
		images: &imageRepo{db: db, tableName: tables.Images},
		items:  &itemRepo{db: db, tableName: tables.Items},
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

type imageRepo struct {
	db        *sql.DB
	tableName string
}

const imageColumns = `id, object_key, bucket, user_id, filename, content_type, description, visibility, tags, size_bytes, auto_created, created_at, updated_at`

func (r *imageRepo) Put(ctx context.Context, meta picstore.ImageMeta) error {
	tagsJSON, err := encodeTags(meta.Tags)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.tableName, imageColumns)

	_, err = r.db.ExecContext(ctx, query,
		meta.ID.String(), meta.ObjectKey, meta.Bucket, meta.UserID, meta.Filename,
		meta.ContentType, meta.Description, string(meta.Visibility), tagsJSON,
		meta.Size, meta.AutoCreated,
		meta.CreatedAt.UTC().Format(picstore.TimestampFormat),
		meta.UpdatedAt.UTC().Format(picstore.TimestampFormat),
	)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	return nil
}

func (r *imageRepo) Get(ctx context.Context, id uuid.UUID) (picstore.ImageMeta, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ?`, imageColumns, r.tableName)

	row := r.db.QueryRowContext(ctx, query, id.String())

	m, err := scanImage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return picstore.ImageMeta{}, picstore.ErrNotFound
		}
		return picstore.ImageMeta{}, fmt.Errorf("get: %w", err)
	}

	return m, nil
}

func (r *imageRepo) FindByObject(ctx context.Context, bucket, objectKey string) (picstore.ImageMeta, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE bucket = ? AND object_key = ?`, imageColumns, r.tableName)

	row := r.db.QueryRowContext(ctx, query, bucket, objectKey)

	m, err := scanImage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	if q.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Visibility != picstore.VisibilityAll {
		conds = append(conds, "visibility = ?")
		args = append(args, string(q.Visibility))
	}
	if q.Filename != "" {
		conds = append(conds, `filename LIKE '%' || ? || '%' ESCAPE '\'`)
		args = append(args, picstore.EscapeLikePattern(q.Filename))
	}
	if !q.DateFrom.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, q.DateFrom.UTC().Format(picstore.TimestampFormat))
	}
	if !q.DateTo.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, q.DateTo.UTC().Format(picstore.TimestampFormat))
	}
	if q.Cursor != "" {
		conds = append(conds, fmt.Sprintf("(%s, id) %s (?, ?)", sortCol, cmp))
		args = append(args, cursor.SortValue, cursor.ID.String())
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s %s ORDER BY %s %s, id %s LIMIT ?`,
		imageColumns, r.tableName, where, sortCol, dir, dir)
	args = append(args, q.Limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return picstore.ImageList{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

func (r *imageRepo) Update(ctx context.Context, id uuid.UUID, patch picstore.ImagePatch) (picstore.ImageMeta, error) {
	var sets []string
	var args []any

	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Visibility != nil {
		sets = append(sets, "visibility = ?")
		args = append(args, string(*patch.Visibility))
	}
	if patch.Tags != nil {
		tagsJSON, err := encodeTags(*patch.Tags)
		if err != nil {
			return picstore.ImageMeta{}, fmt.Errorf("update: %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, tagsJSON)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(picstore.TimestampFormat))
	args = append(args, id.String())

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET %s WHERE id = ?`, r.tableName, strings.Join(sets, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return picstore.ImageMeta{}, fmt.Errorf("update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return picstore.ImageMeta{}, fmt.Errorf("update: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return picstore.ImageMeta{}, fmt.Errorf("update: %w", picstore.ErrNotFound)
	}

	return r.Get(ctx, id)
}

func (r *imageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete: %w", picstore.ErrNotFound)
	}

	return nil
}

type itemRepo struct {
	db        *sql.DB
	tableName string
}

func (r *itemRepo) Put(ctx context.Context, item picstore.Item) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)`, r.tableName)

	_, err := r.db.ExecContext(ctx, query,
		item.ID.String(), item.Content,
		item.CreatedAt.UTC().Format(picstore.TimestampFormat),
		item.UpdatedAt.UTC().Format(picstore.TimestampFormat),
	)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	return nil
}

func (r *itemRepo) Get(ctx context.Context, id uuid.UUID) (picstore.Item, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, content, created_at, updated_at FROM %s WHERE id = ?`, r.tableName)

	row := r.db.QueryRowContext(ctx, query, id.String())

	item, err := scanItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return picstore.Item{}, picstore.ErrNotFound
		}
		return picstore.Item{}, fmt.Errorf("get: %w", err)
	}

	return item, nil
}

func (r *itemRepo) List(ctx context.Context) ([]picstore.Item, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, content, created_at, updated_at FROM %s ORDER BY created_at, id`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []picstore.Item{}
	for rows.Next() {
		item, scanErr := scanItem(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("list: scan: %w", scanErr)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return items, nil
}

func (r *itemRepo) Update(ctx context.Context, id uuid.UUID, content string) (picstore.Item, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET content = ?, updated_at = ? WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query,
		content, time.Now().UTC().Format(picstore.TimestampFormat), id.String())
	if err != nil {
		return picstore.Item{}, fmt.Errorf("update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return picstore.Item{}, fmt.Errorf("update: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return picstore.Item{}, fmt.Errorf("update: %w", picstore.ErrNotFound)
	}

	return r.Get(ctx, id)
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete: %w", picstore.ErrNotFound)
	}

	return nil
}

func scanImage(scan func(dest ...any) error) (picstore.ImageMeta, error) {
	var m picstore.ImageMeta
	var idStr, visibility, tagsJSON, createdAt, updatedAt string

	err := scan(
		&idStr, &m.ObjectKey, &m.Bucket, &m.UserID, &m.Filename, &m.ContentType,
		&m.Description, &visibility, &tagsJSON, &m.Size, &m.AutoCreated,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return picstore.ImageMeta{}, err
	}

	m.ID, err = uuid.Parse(idStr)
	if err != nil {
		return picstore.ImageMeta{}, fmt.Errorf("parse uuid: %w", err)
	}

	m.Visibility = picstore.Visibility(visibility)

	if err = json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
		return picstore.ImageMeta{}, fmt.Errorf("parse tags: %w", err)
	}

	m.CreatedAt, err = time.Parse(picstore.TimestampFormat, createdAt)
	if err != nil {
		return picstore.ImageMeta{}, fmt.Errorf("parse created_at: %w", err)
	}

	m.UpdatedAt, err = time.Parse(picstore.TimestampFormat, updatedAt)
	if err != nil {
		return picstore.ImageMeta{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return m, nil
}

func scanItem(scan func(dest ...any) error) (picstore.Item, error) {
	var item picstore.Item
	var idStr, createdAt, updatedAt string

	err := scan(&idStr, &item.Content, &createdAt, &updatedAt)
	if err != nil {
		return picstore.Item{}, err
	}

	item.ID, err = uuid.Parse(idStr)
	if err != nil {
		return picstore.Item{}, fmt.Errorf("parse uuid: %w", err)
	}

	item.CreatedAt, err = time.Parse(picstore.TimestampFormat, createdAt)
	if err != nil {
		return picstore.Item{}, fmt.Errorf("parse created_at: %w", err)
	}

	item.UpdatedAt, err = time.Parse(picstore.TimestampFormat, updatedAt)
	if err != nil {
		return picstore.Item{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return item, nil
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
