package upload

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidName   = errors.New("invalid file name")
)

// Object is a stored image opened for reading. Callers must close it.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// ImageStore keeps uploaded image blobs under flat file names.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) error
	Open(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, name string) error
}

// ValidName rejects anything that could address a path outside the store.
func ValidName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) ||
		filepath.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}
