package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/anupamd/picstore"
	"github.com/anupamd/picstore/formdata"
)

type fileUploadRequest struct {
	Filename string `json:"filename" validate:"required"`
	Content  string `json:"content"  validate:"required"`
}

// handleUploadFile accepts a plain file either as multipart/form-data with
// a part named "file", or as application/json carrying the content base64
// encoded.
func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.config.MaxBodyBytes)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	contentType := r.Header.Get("Content-Type")

	var filename string
	var content []byte

	switch {
	case strings.Contains(contentType, "application/json"):
		var req fileUploadRequest
		if err := json.Unmarshal(body, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON in request body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_input", "Missing required fields: filename and content")
			return
		}
		content, err = base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_content", "Invalid base64 encoded content")
			return
		}
		filename = req.Filename

	case strings.Contains(contentType, "multipart/form-data"):
		var ok bool
		content, filename, ok = formdata.ExtractFile(body, contentType)
		if !ok {
			WriteError(w, http.StatusBadRequest, "no_file", "No file found in the form data")
			return
		}

	default:
		WriteError(w, http.StatusBadRequest, "unsupported_media_type",
			"Unsupported Content-Type. Use application/json with base64 encoded file or multipart/form-data")
		return
	}

	result, err := h.service.UploadFile(r.Context(), filename, content)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

type imageUploadRequest struct {
	Image struct {
		Filename    string `json:"filename"    validate:"required"`
		Content     string `json:"content"     validate:"required"`
		ContentType string `json:"contentType"`
	} `json:"image"`
	Metadata struct {
		UserID      string   `json:"userId"`
		Description string   `json:"description"`
		Visibility  string   `json:"visibility"`
		Tags        []string `json:"tags"`
	} `json:"metadata"`
}

// handleUploadImage accepts an image with metadata either as JSON
// ({"image": {...}, "metadata": {...}}) or as multipart/form-data with the
// payload in a "file" part and metadata in sibling fields.
func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.config.MaxBodyBytes)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	contentType := r.Header.Get("Content-Type")

	var up picstore.ImageUpload

	switch {
	case strings.Contains(contentType, "application/json"):
		var req imageUploadRequest
		if err := json.Unmarshal(body, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON in request body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_input", "Missing required fields in image data: filename and content")
			return
		}
		content, decErr := base64.StdEncoding.DecodeString(req.Image.Content)
		if decErr != nil {
			WriteError(w, http.StatusBadRequest, "invalid_content", "Invalid base64 encoded content")
			return
		}
		imageContentType := req.Image.ContentType
		if imageContentType == "" {
			imageContentType = "application/octet-stream"
		}
		up = picstore.ImageUpload{
			Filename:    req.Image.Filename,
			ContentType: imageContentType,
			Content:     content,
			UserID:      req.Metadata.UserID,
			Description: req.Metadata.Description,
			Visibility:  picstore.Visibility(req.Metadata.Visibility),
			Tags:        req.Metadata.Tags,
		}

	case strings.Contains(contentType, "multipart/form-data"):
		form, ok := formdata.Parse(body, contentType)
		if !ok {
			WriteError(w, http.StatusBadRequest, "no_file", "No file found in the form data")
			return
		}
		file, exists := form["file"]
		if !exists || len(file.Content) == 0 {
			WriteError(w, http.StatusBadRequest, "no_file", "No file found in the form data")
			return
		}

		up = picstore.ImageUpload{
			Filename:    file.Filename,
			ContentType: file.ContentType,
			Content:     file.Content,
			UserID:      form["userId"].Value,
			Description: form["description"].Value,
			Visibility:  picstore.VisibilityPublic,
			Tags:        parseTagsField(form["tags"].Value),
		}
		if vis := form["visibility"].Value; vis != "" {
			up.Visibility = picstore.Visibility(vis)
		}

	default:
		WriteError(w, http.StatusBadRequest, "unsupported_media_type",
			"Unsupported Content-Type. Use application/json with base64 encoded file or multipart/form-data")
		return
	}

	meta, err := h.service.UploadImage(r.Context(), up)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, meta)
}

// parseTagsField reads a multipart tags field: a JSON array when possible,
// a comma-separated list otherwise.
func parseTagsField(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return tags
	}

	for _, tag := range strings.Split(raw, ",") {
		tags = append(tags, strings.TrimSpace(tag))
	}
	return tags
}
