// Package storage keeps uploaded course files on local disk or in Cloudflare R2 and reads
// them back for quiz generation.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Blob is an object store for uploaded files.
type Blob interface {
	// Put stores r under key and returns the URL the object can be read from, if any.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds the storage key of an uploaded file.
func ObjectKey(userID, fileID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("files/%s/%s/%s", userID, fileID, name)
}
