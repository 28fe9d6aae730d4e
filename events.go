package picstore

import (
	"net/url"
	"strings"
)

// Notification is an S3-style bucket notification payload, as delivered by
// AWS or MinIO webhooks.
type Notification struct {
	Records []EventRecord `json:"Records"`
}

// EventRecord is a single storage event inside a Notification.
type EventRecord struct {
	EventSource string  `json:"eventSource"`
	EventName   string  `json:"eventName"`
	EventTime   string  `json:"eventTime"`
	S3          S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket S3Bucket `json:"bucket"`
	Object S3Object `json:"object"`
}

type S3Bucket struct {
	Name string `json:"name"`
}

type S3Object struct {
	// Key is percent-encoded on the wire; DecodedKey undoes that.
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// IsObjectCreated reports whether the record describes an object-creation
// event. AWS emits names like "ObjectCreated:Put"; MinIO prefixes them with
// "s3:". Anything else (removals, restores, ...) is ignored.
func (r EventRecord) IsObjectCreated() bool {
	return strings.HasPrefix(strings.TrimPrefix(r.EventName, "s3:"), "ObjectCreated:")
}

// DecodedKey returns the percent-decoded object key, with '+' treated as a
// space the way S3 encodes keys in event payloads. Keys that fail to decode
// are returned as-is.
func (o S3Object) DecodedKey() string {
	key, err := url.QueryUnescape(o.Key)
	if err != nil {
		return o.Key
	}
	return key
}

// ProcessedObject summarizes one handled storage event record.
type ProcessedObject struct {
	ObjectKey string `json:"objectKey"`
	Bucket    string `json:"bucket"`
	Size      int64  `json:"size"`
	EventTime string `json:"eventTime,omitempty"`
}
