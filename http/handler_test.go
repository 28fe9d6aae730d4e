package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/anupamd/picstore"
	picstorehttp "github.com/anupamd/picstore/http"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) UploadFile(ctx context.Context, filename string, content []byte) (picstore.FileUploadResult, error) {
	args := m.Called(ctx, filename, content)
	return args.Get(0).(picstore.FileUploadResult), args.Error(1)
}

func (m *MockService) UploadImage(ctx context.Context, up picstore.ImageUpload) (picstore.ImageMeta, error) {
	args := m.Called(ctx, up)
	return args.Get(0).(picstore.ImageMeta), args.Error(1)
}

func (m *MockService) GetImage(ctx context.Context, id uuid.UUID) (picstore.ImageMeta, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(picstore.ImageMeta), args.Error(1)
}

func (m *MockService) ListImages(ctx context.Context, q picstore.ImageQuery) (picstore.ImageList, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(picstore.ImageList), args.Error(1)
}

func (m *MockService) UpdateImage(ctx context.Context, id uuid.UUID, patch picstore.ImagePatch) (picstore.ImageMeta, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(picstore.ImageMeta), args.Error(1)
}

func (m *MockService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) CreateItem(ctx context.Context, content string) (picstore.Item, error) {
	args := m.Called(ctx, content)
	return args.Get(0).(picstore.Item), args.Error(1)
}

func (m *MockService) GetItem(ctx context.Context, id uuid.UUID) (picstore.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(picstore.Item), args.Error(1)
}

func (m *MockService) ListItems(ctx context.Context) ([]picstore.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]picstore.Item), args.Error(1)
}

func (m *MockService) UpdateItem(ctx context.Context, id uuid.UUID, content string) (picstore.Item, error) {
	args := m.Called(ctx, id, content)
	return args.Get(0).(picstore.Item), args.Error(1)
}

func (m *MockService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) ProcessStorageEvent(ctx context.Context, n picstore.Notification) ([]picstore.ProcessedObject, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]picstore.ProcessedObject), args.Error(1)
}

func newTestHandler(service picstorehttp.Service) *picstorehttp.Handler {
	return picstorehttp.NewHandler(&picstorehttp.HandlerConfig{}, service)
}

// multipartBody builds a raw multipart body with boundary "B". Each part is
// a pair of (headers, content).
func multipartBody(parts ...[2]string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--B\r\n")
		b.WriteString(p[0])
		b.WriteString("\r\n\r\n")
		b.WriteString(p[1])
		b.WriteString("\r\n")
	}
	b.WriteString("--B--\r\n")
	return b.String()
}

func TestHandler_UploadFile_Multipart(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("UploadFile", mock.Anything, "report.pdf", []byte("pdf bytes")).
		Return(picstore.FileUploadResult{
			Filename:  "report.pdf",
			ObjectKey: "uploads/report.pdf",
			Bucket:    "uploads",
			Size:      9,
		}, nil)

	body := multipartBody([2]string{
		`Content-Disposition: form-data; name="file"; filename="report.pdf"`,
		"pdf bytes",
	})
	req := httptest.NewRequest("POST", "/files", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var result picstore.FileUploadResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "uploads/report.pdf", result.ObjectKey)
	service.AssertExpectations(t)
}

func TestHandler_UploadFile_MultipartBase64Transfer(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("UploadFile", mock.Anything, "a.bin", []byte{0x00, 0x01, 0x02}).
		Return(picstore.FileUploadResult{Filename: "a.bin"}, nil)

	raw := multipartBody([2]string{
		`Content-Disposition: form-data; name="file"; filename="a.bin"`,
		string([]byte{0x00, 0x01, 0x02}),
	})
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))
	req := httptest.NewRequest("POST", "/files", strings.NewReader(encoded))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
	req.Header.Set("Content-Transfer-Encoding", "base64")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_UploadFile_JSON(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("UploadFile", mock.Anything, "hello.txt", []byte("hello")).
		Return(picstore.FileUploadResult{Filename: "hello.txt"}, nil)

	payload := map[string]string{
		"filename": "hello.txt",
		"content":  base64.StdEncoding.EncodeToString([]byte("hello")),
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/files", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_UploadFile_JSONMissingFields(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/files", strings.NewReader(`{"filename": "x.txt"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "UploadFile")
}

func TestHandler_UploadFile_JSONBadBase64(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/files",
		strings.NewReader(`{"filename": "x.txt", "content": "not base64!!!"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UploadFile_NoFilePart(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	body := multipartBody([2]string{
		`Content-Disposition: form-data; name="caption"`,
		"just a field",
	})
	req := httptest.NewRequest("POST", "/files", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file found in the form data")
}

func TestHandler_UploadFile_UnsupportedContentType(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/files", strings.NewReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported Content-Type")
}

func TestHandler_UploadImage_Multipart(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("UploadImage", mock.Anything, mock.MatchedBy(func(up picstore.ImageUpload) bool {
		return up.Filename == "cat.png" &&
			string(up.Content) == "png bytes" &&
			up.ContentType == "image/png" &&
			up.UserID == "u1" &&
			up.Visibility == picstore.VisibilityPrivate &&
			len(up.Tags) == 2 && up.Tags[0] == "pets" && up.Tags[1] == "cats"
	})).Return(picstore.ImageMeta{ID: uuid.New(), Filename: "cat.png"}, nil)

	body := multipartBody(
		[2]string{
			"Content-Disposition: form-data; name=\"file\"; filename=\"cat.png\"\r\nContent-Type: image/png",
			"png bytes",
		},
		[2]string{`Content-Disposition: form-data; name="userId"`, "u1"},
		[2]string{`Content-Disposition: form-data; name="visibility"`, "private"},
		[2]string{`Content-Disposition: form-data; name="tags"`, "pets, cats"},
	)
	req := httptest.NewRequest("POST", "/images", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_UploadImage_MultipartDefaultsToPublic(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("UploadImage", mock.Anything, mock.MatchedBy(func(up picstore.ImageUpload) bool {
		return up.Visibility == picstore.VisibilityPublic
	})).Return(picstore.ImageMeta{ID: uuid.New()}, nil)

	body := multipartBody([2]string{
		`Content-Disposition: form-data; name="file"; filename="a.jpg"`,
		"jpeg",
	})
	req := httptest.NewRequest("POST", "/images", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_UploadImage_JSON(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("UploadImage", mock.Anything, mock.MatchedBy(func(up picstore.ImageUpload) bool {
		return up.Filename == "dog.jpg" &&
			string(up.Content) == "jpeg bytes" &&
			up.Description == "good dog" &&
			len(up.Tags) == 1 && up.Tags[0] == "dogs"
	})).Return(picstore.ImageMeta{ID: uuid.New(), Filename: "dog.jpg"}, nil)

	payload := map[string]any{
		"image": map[string]string{
			"filename":    "dog.jpg",
			"content":     base64.StdEncoding.EncodeToString([]byte("jpeg bytes")),
			"contentType": "image/jpeg",
		},
		"metadata": map[string]any{
			"userId":      "u2",
			"description": "good dog",
			"tags":        []string{"dogs"},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/images", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_UploadImage_MultipartEmptyFile(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	body := multipartBody(
		[2]string{`Content-Disposition: form-data; name="file"; filename="empty.png"`, ""},
		[2]string{`Content-Disposition: form-data; name="userId"`, "u1"},
	)
	req := httptest.NewRequest("POST", "/images", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file found in the form data")
	service.AssertNotCalled(t, "UploadImage")
}

func TestHandler_ListImages_QueryMapping(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("ListImages", mock.Anything, mock.MatchedBy(func(q picstore.ImageQuery) bool {
		return q.UserID == "u1" &&
			q.Tag == "pets" &&
			q.Visibility == picstore.VisibilityAll &&
			q.Filename == "cat" &&
			q.SortBy == picstore.SortByFilename &&
			!q.Descending &&
			q.Limit == 25 &&
			q.Cursor == "tok" &&
			q.DateFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	})).Return(picstore.ImageList{Images: []picstore.ImageMeta{}, Count: 0}, nil)

	req := httptest.NewRequest("GET",
		"/images?userId=u1&tag=pets&visibility=all&filename=cat&sort=filename&order=asc&limit=25&nextToken=tok&dateFrom=2026-01-01",
		nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_ListImages_InvalidDateIgnored(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("ListImages", mock.Anything, mock.MatchedBy(func(q picstore.ImageQuery) bool {
		return q.DateFrom.IsZero() && q.Descending
	})).Return(picstore.ImageList{}, nil)

	req := httptest.NewRequest("GET", "/images?dateFrom=not-a-date", nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_GetImage(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	id := uuid.New()
	service.On("GetImage", mock.Anything, id).
		Return(picstore.ImageMeta{ID: id, Filename: "cat.png"}, nil)

	req := httptest.NewRequest("GET", "/images/"+id.String(), nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var meta picstore.ImageMeta
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, id, meta.ID)
}

func TestHandler_GetImage_NotFound(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	id := uuid.New()
	service.On("GetImage", mock.Anything, id).
		Return(picstore.ImageMeta{}, picstore.ErrNotFound)

	req := httptest.NewRequest("GET", "/images/"+id.String(), nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetImage_InvalidID(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	req := httptest.NewRequest("GET", "/images/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "GetImage")
}

func TestHandler_UpdateImage(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	id := uuid.New()
	service.On("UpdateImage", mock.Anything, id, mock.MatchedBy(func(p picstore.ImagePatch) bool {
		return p.Description != nil && *p.Description == "updated" &&
			p.Visibility != nil && *p.Visibility == picstore.VisibilityFriends &&
			p.Tags == nil
	})).Return(picstore.ImageMeta{ID: id, Description: "updated"}, nil)

	body := `{"description": "updated", "visibility": "friends"}`
	req := httptest.NewRequest("PUT", "/images/"+id.String(), strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_UpdateImage_NoFields(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	id := uuid.New()
	service.On("UpdateImage", mock.Anything, id, picstore.ImagePatch{}).
		Return(picstore.ImageMeta{}, picstore.ErrInvalidInput)

	req := httptest.NewRequest("PUT", "/images/"+id.String(), strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteImage(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	id := uuid.New()
	service.On("DeleteImage", mock.Anything, id).Return(nil)

	req := httptest.NewRequest("DELETE", "/images/"+id.String(), nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_CreateItem(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("CreateItem", mock.Anything, "hello world").
		Return(picstore.Item{ID: uuid.New(), Content: "hello world"}, nil)

	req := httptest.NewRequest("POST", "/items", strings.NewReader(`{"content": "hello world"}`))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_CreateItem_RejectsUnknownFields(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/items",
		strings.NewReader(`{"content": "x", "extra": true}`))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "CreateItem")
}

func TestHandler_CreateItem_RejectsEmptyContent(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/items", strings.NewReader(`{"content": ""}`))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "CreateItem")
}

func TestHandler_ListItems_EmptyIsBareArray(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("ListItems", mock.Anything).Return(nil, nil)

	req := httptest.NewRequest("GET", "/items", nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_UpdateItem(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	id := uuid.New()
	service.On("UpdateItem", mock.Anything, id, "new content").
		Return(picstore.Item{ID: id, Content: "new content"}, nil)

	req := httptest.NewRequest("PUT", "/items/"+id.String(),
		strings.NewReader(`{"content": "new content"}`))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_DeleteItem_NotFound(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	id := uuid.New()
	service.On("DeleteItem", mock.Anything, id).Return(picstore.ErrNotFound)

	req := httptest.NewRequest("DELETE", "/items/"+id.String(), nil)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_StorageEvent(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("ProcessStorageEvent", mock.Anything, mock.MatchedBy(func(n picstore.Notification) bool {
		return len(n.Records) == 1 &&
			n.Records[0].S3.Bucket.Name == "images" &&
			n.Records[0].S3.Object.Key == "photos/cat.png"
	})).Return([]picstore.ProcessedObject{
		{ObjectKey: "photos/cat.png", Bucket: "images", Size: 1024},
	}, nil)

	body := `{
		"Records": [{
			"eventSource": "minio:s3",
			"eventName": "s3:ObjectCreated:Put",
			"s3": {
				"bucket": {"name": "images"},
				"object": {"key": "photos/cat.png", "size": 1024}
			}
		}]
	}`
	req := httptest.NewRequest("POST", "/events/storage", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Processed 1 image upload events")
	service.AssertExpectations(t)
}

func TestHandler_StorageEvent_NoRecords(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("ProcessStorageEvent", mock.Anything, mock.Anything).
		Return(nil, picstore.ErrInvalidInput)

	req := httptest.NewRequest("POST", "/events/storage", strings.NewReader(`{"Records": []}`))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_StorageEvent_OnlyCreatedRecordsReported(t *testing.T) {
	service := new(MockService)
	handler := newTestHandler(service)

	service.On("ProcessStorageEvent", mock.Anything, mock.Anything).
		Return([]picstore.ProcessedObject{}, nil)

	body := `{
		"Records": [{
			"eventSource": "minio:s3",
			"eventName": "s3:ObjectRemoved:Delete",
			"s3": {
				"bucket": {"name": "images"},
				"object": {"key": "photos/cat.png", "size": 1024}
			}
		}]
	}`
	req := httptest.NewRequest("POST", "/events/storage", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Processed 0 image upload events")
	assert.Contains(t, rec.Body.String(), `"images":[]`)
}

func TestHandler_CORSEnabled(t *testing.T) {
	service := new(MockService)
	handler := picstorehttp.NewHandler(&picstorehttp.HandlerConfig{
		CORS: picstorehttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowedHeaders: []string{"Content-Type"},
		},
	}, service)

	req := httptest.NewRequest("OPTIONS", "/images", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
