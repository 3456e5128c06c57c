package storage

import (
	"context"
	"io"
)

// PutInput describes an object being written.
type PutInput struct {
	Filename    string
	ContentType string
	Size        int64
}

// PutResult carries the stored key and its public URL.
type PutResult struct {
	Key string
	URL string
}

// Storage persists uploaded media and returns a public URL for it.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

func safeExt(ext string) string {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return ext
	default:
		return ""
	}
}
