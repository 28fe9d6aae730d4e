package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a picstore server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config: &Config{
			Endpoint: endpoint,
			UserID:   cfg.UserID,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload uploads image(s) to the server.
// For recursive uploads, walks the directory and uploads every regular file.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}
	result, err := c.uploadSingle(ctx, opts, opts.LocalPath)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		result, uploadErr := c.uploadSingle(ctx, opts, opts.LocalPath)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult

	walkErr := filepath.WalkDir(opts.LocalPath, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			return nil
		}

		result, uploadErr := c.uploadSingle(ctx, opts, path)
		if uploadErr != nil {
			result = UploadResult{
				LocalPath: path,
				Err:       uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle uploads a single image as multipart/form-data.
func (c *Client) uploadSingle(ctx context.Context, opts UploadOptions, localPath string) (UploadResult, error) {
	content, err := os.ReadFile(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(localPath)
	}

	userID := opts.UserID
	if userID == "" {
		userID = c.config.UserID
	}

	body, formContentType, err := buildUploadForm(filepath.Base(localPath), contentType, content, userID, opts)
	if err != nil {
		return UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/images", body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", formContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return UploadResult{}, parseServerError(resp.StatusCode, respBody)
	}

	var meta ImageInfo
	if err := json.Unmarshal(respBody, &meta); err != nil {
		return UploadResult{}, fmt.Errorf("parse response: %w", err)
	}

	return UploadResult{
		LocalPath: localPath,
		ID:        meta.ID,
		ObjectKey: meta.ObjectKey,
		Filename:  meta.Filename,
		Size:      meta.Size,
	}, nil
}

// buildUploadForm assembles the multipart body for an image upload.
func buildUploadForm(filename, contentType string, content []byte, userID string, opts UploadOptions) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err = part.Write(content); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}

	fields := map[string]string{
		"userId":      userID,
		"description": opts.Description,
		"visibility":  opts.Visibility,
	}
	if len(opts.Tags) > 0 {
		fields["tags"] = strings.Join(opts.Tags, ",")
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err = w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", name, err)
		}
	}

	if err = w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// Delete deletes one or more images from the server.
// Continues on error, collecting results for all ids.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.IDs) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(opts.IDs))

	for _, id := range opts.IDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, c.deleteSingle(ctx, id))
	}

	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, id string) DeleteResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.config.Endpoint+"/images/"+url.PathEscape(id), http.NoBody)
	if err != nil {
		return DeleteResult{
			ID:  id,
			Err: fmt.Errorf("create request: %w", err),
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DeleteResult{
			ID:  id,
			Err: fmt.Errorf("do request: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
		return DeleteResult{
			ID:      id,
			Deleted: true,
		}
	}

	body, _ := io.ReadAll(resp.Body)
	return DeleteResult{
		ID:  id,
		Err: parseServerError(resp.StatusCode, body),
	}
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List lists images on the server.
// If opts.All is true, paginates through all results.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.All {
		return c.listAll(ctx, opts)
	}
	return c.listPage(ctx, opts)
}

// listPage fetches a single page of results.
func (c *Client) listPage(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	if opts.UserID != "" {
		query.Set("userId", opts.UserID)
	}
	if opts.Tag != "" {
		query.Set("tag", opts.Tag)
	}
	if opts.Visibility != "" {
		query.Set("visibility", opts.Visibility)
	}
	if opts.Filename != "" {
		query.Set("filename", opts.Filename)
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.Order != "" {
		query.Set("order", opts.Order)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.NextToken != "" {
		query.Set("nextToken", opts.NextToken)
	}

	listURL := c.config.Endpoint + "/images"
	if encoded := query.Encode(); encoded != "" {
		listURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var serverResult serverListResult
	if err := json.Unmarshal(body, &serverResult); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &ListResult{
		Images:    serverResult.Images,
		NextToken: serverResult.NextToken,
	}, nil
}

// listAll fetches all pages of results.
func (c *Client) listAll(ctx context.Context, opts ListOptions) (*ListResult, error) {
	var allImages []ImageInfo
	token := opts.NextToken

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageOpts := opts
		pageOpts.NextToken = token
		pageOpts.All = false

		page, err := c.listPage(ctx, pageOpts)
		if err != nil {
			return nil, err
		}

		allImages = append(allImages, page.Images...)

		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	return &ListResult{
		Images:    allImages,
		NextToken: "",
	}, nil
}

// TotalSize calculates the total size of all images in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, img := range r.Images {
		total += img.Size
	}
	return total
}

// detectContentType returns MIME type based on file extension.
func detectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}

// parseServerError extracts error message from server response.
func parseServerError(statusCode int, body []byte) error {
	return &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned when the server rejects the request (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
