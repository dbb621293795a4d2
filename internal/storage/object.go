package storage

import (
	"strings"
)

// Object is a single blob written to a store.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
}

// ContentTypeForExt returns the MIME type used when storing an image with ext.
func ContentTypeForExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
