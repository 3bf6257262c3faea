// Package storage keeps uploaded post images, either on S3 or on local disk.
package storage

import (
	"context"
	"io"
	"path"
)

// MediaStore persists uploaded files. Upload returns the object key, which
// URL turns into a public address.
type MediaStore interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

func objectKey(folder, filename string) string {
	return path.Join(folder, path.Base(filename))
}
