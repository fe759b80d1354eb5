package app

import "time"

// ArchivedUpload is an uploaded original kept in the bucket.
type ArchivedUpload struct {
	// Object key in the bucket.
	Key string `json:"key"`

	// Presigned URL, usable as a viewer ?uri= value until it expires.
	URL string `json:"url"`

	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	Uploaded    time.Time `json:"uploaded"`
}
