// Package storage persists uploaded images in an object store and resolves
// their public URLs.
package storage

import (
	"context"
	"math/rand/v2"
	"mime"
	"path"
	"strconv"
	"strings"
)

// ObjectStore uploads raw bytes under bucket/key and returns the public URL.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
}

var extensionsByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// NewUploadKey returns uploads/<random digits>.<ext>, keeping the original
// file extension and falling back to one derived from contentType.
func NewUploadKey(filename, contentType string) string {
	return uploadKey(filename, contentType, rand.Float64())
}

func uploadKey(filename, contentType string, fraction float64) string {
	digits := strings.TrimPrefix(strconv.FormatFloat(fraction, 'f', -1, 64), "0.")
	return "uploads/" + digits + "." + extensionFor(filename, contentType)
}

func extensionFor(filename, contentType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), "."); ext != "" {
		return ext
	}
	if ext, ok := extensionsByType[strings.ToLower(contentType)]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
