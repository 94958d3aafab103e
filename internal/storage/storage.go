package storage

import (
	"context"
	"time"
)

// ObjectInfo describes one archived object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage is the S3-compatible subset the report archive uses.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}
