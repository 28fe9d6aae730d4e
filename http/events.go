package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/anupamd/picstore"
)

type storageEventResponse struct {
	Message string                     `json:"message"`
	Images  []picstore.ProcessedObject `json:"images"`
}

// handleStorageEvent ingests a bucket notification webhook and backfills
// metadata for any objects created outside the upload API.
func (h *Handler) handleStorageEvent(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.config.MaxBodyBytes)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	var notification picstore.Notification
	if err := json.Unmarshal(body, &notification); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON in request body")
		return
	}

	processed, err := h.service.ProcessStorageEvent(r.Context(), notification)
	if err != nil {
		HandleError(w, err)
		return
	}

	if processed == nil {
		processed = []picstore.ProcessedObject{}
	}

	_ = WriteJSON(w, http.StatusOK, storageEventResponse{
		Message: fmt.Sprintf("Processed %d image upload events", len(processed)),
		Images:  processed,
	})
}
