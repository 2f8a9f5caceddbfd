package storage

import (
	"context"
	"io"
)

// PutOptions carries object metadata set at upload time.
type PutOptions struct {
	ContentType  string
	CacheControl string
}

type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	SignedURL(ctx context.Context, key string) (string, error) // fs returns "file://..." for dev
}
