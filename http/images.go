package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anupamd/picstore"
)

func (h *Handler) handleListImages(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListImages(r.Context(), imageQueryFromRequest(r))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// imageQueryFromRequest maps the listing query string onto an ImageQuery.
// Invalid dates are ignored rather than rejected; invalid limit and sort
// values fall back to their defaults downstream.
func imageQueryFromRequest(r *http.Request) picstore.ImageQuery {
	params := r.URL.Query()

	limit := 10
	if raw := params.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	q := picstore.ImageQuery{
		UserID:     params.Get("userId"),
		Tag:        params.Get("tag"),
		Visibility: picstore.Visibility(params.Get("visibility")),
		Filename:   params.Get("filename"),
		SortBy:     picstore.SortField(params.Get("sort")),
		Descending: params.Get("order") != "asc",
		Limit:      limit,
		Cursor:     params.Get("nextToken"),
	}

	if raw := params.Get("dateFrom"); raw != "" {
		if t, ok := parseDate(raw); ok {
			q.DateFrom = t
		} else {
			slog.Warn("invalid dateFrom, ignoring", "value", raw)
		}
	}
	if raw := params.Get("dateTo"); raw != "" {
		if t, ok := parseDate(raw); ok {
			q.DateTo = t
		} else {
			slog.Warn("invalid dateTo, ignoring", "value", raw)
		}
	}

	return q
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (h *Handler) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	meta, err := h.service.GetImage(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, meta)
}

type imagePatchRequest struct {
	Description *string   `json:"description"`
	Visibility  *string   `json:"visibility"`
	Tags        *[]string `json:"tags"`
}

func (h *Handler) handleUpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req imagePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON in request body")
		return
	}

	patch := picstore.ImagePatch{
		Description: req.Description,
		Tags:        req.Tags,
	}
	if req.Visibility != nil {
		vis := picstore.Visibility(*req.Visibility)
		patch.Visibility = &vis
	}

	meta, err := h.service.UpdateImage(r.Context(), id, patch)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, meta)
}

func (h *Handler) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteImage(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
