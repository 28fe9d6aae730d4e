package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/anupamd/picstore"
)

type itemRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// decodeItemRequest parses an item body strictly: unknown fields are
// rejected and content must be a non-empty string.
func (h *Handler) decodeItemRequest(w http.ResponseWriter, body []byte) (itemRequest, bool) {
	var req itemRequest

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid request body: expected {\"content\": \"...\"}")
		return itemRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Field 'content' is required and must be a non-empty string")
		return itemRequest{}, false
	}

	return req, true
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.config.MaxBodyBytes)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	req, ok := h.decodeItemRequest(w, body)
	if !ok {
		return
	}

	item, err := h.service.CreateItem(r.Context(), req.Content)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	if items == nil {
		items = []picstore.Item{}
	}

	_ = WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r, h.config.MaxBodyBytes)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	req, ok := h.decodeItemRequest(w, body)
	if !ok {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id, req.Content)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
