package http

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxBodyBytes caps request bodies at 32 MiB, enough for the upload
// payloads this API handles.
const DefaultMaxBodyBytes = 32 << 20

// readBody drains the request body into memory. Bodies marked with
// Content-Transfer-Encoding: base64 are decoded first; gateways that cannot
// pass binary through (and test clients mimicking them) deliver multipart
// payloads that way.
func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if strings.EqualFold(r.Header.Get("Content-Transfer-Encoding"), "base64") {
		decoded, decErr := base64.StdEncoding.DecodeString(string(body))
		if decErr != nil {
			return nil, fmt.Errorf("decode base64 body: %w", decErr)
		}
		return decoded, nil
	}

	return body, nil
}
