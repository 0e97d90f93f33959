package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrInvalidKey is returned for keys that are empty, absolute or escape the store root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Object describes a stored file.
type Object struct {
	Key     string    `json:"key"`
	URL     string    `json:"url"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified_at"`
}

// Storage saves exported workbooks. The local implementation can be swapped
// for an object store without touching callers.
type Storage interface {
	// Save stores data under key and returns the URL it is served from.
	// key is a slash-separated path such as "snapshots/<workspace>/<file>.xlsx".
	Save(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)

	// List returns the objects under prefix, newest first.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
