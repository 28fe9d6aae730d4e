// Package picstore implements a small upload service: HTTP-triggered file
// and image uploads land in an S3-compatible object store while their
// metadata records go to a database-backed key-value table. Storage
// notifications backfill metadata for objects that bypassed the API, and a
// generic text-items CRUD shares the same table infrastructure.
//
// # Key Components
//
//   - Service: upload pipeline combining an ObjectStore and the metadata repos
//   - ImageRepo / ItemRepo: interfaces for metadata persistence (PostgreSQL, SQLite)
//   - ObjectStore: interface for payload storage (MinIO / any S3-compatible store)
//   - formdata: hand-rolled multipart/form-data body parser
//
// # Upload Paths
//
// Uploads arrive either as application/json with base64-encoded content or
// as multipart/form-data. The multipart body is parsed by the formdata
// package without any multipart library; see that package for the exact
// parsing rules.
//
// See the http package for the REST API and the database package for the
// metadata backends.
package picstore
