// Package storage abstracts the blob store holding the raw file bytes.
// Callers only ever see opaque keys, never paths or bucket layouts.
package storage

import (
	"context"
	"errors"
	"io"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

type Storage interface {
	// Put stores the content and returns the generated key
	Put(ctx context.Context, r io.Reader, size int64) (string, error)

	// Get returns a reader over the object's bytes. The caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error
}

const keyCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// New picks the backend from storage.type
func New() (Storage, error) {
	if viper.GetString("storage.type") == "s3" {
		return NewS3()
	}

	return NewLocal(viper.GetString("storage.root"))
}

func newKey() (string, error) {
	return gonanoid.Generate(keyCharset, 24)
}
