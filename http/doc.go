// Package http provides the HTTP API for the picstore upload service.
//
// The handlers accept uploads either as application/json with base64 encoded
// content or as raw multipart/form-data, which is parsed with the formdata
// package rather than mime/multipart.
//
// # Endpoints
//
//   - POST /files: plain file upload into the object store
//   - POST /images, GET /images: image upload and filtered listing
//   - GET/PUT/DELETE /images/{id}: image metadata CRUD
//   - POST /items, GET /items, GET/PUT/DELETE /items/{id}: generic item CRUD
//   - POST /events/storage: bucket notification webhook for metadata backfill
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{}, service)
//	server := &nethttp.Server{Addr: ":8080", Handler: handler.Router()}
//	server.ListenAndServe()
//
// Errors from the service layer are mapped to JSON error responses by
// HandleError: picstore.ErrNotFound becomes 404, picstore.ErrInvalidInput and
// picstore.ErrNoFile become 400, everything else 500.
package http
