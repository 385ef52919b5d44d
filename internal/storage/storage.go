package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

// Package storage contains object storage abstractions for S3-compatible backends.
// Implementations stream bytes and never touch local disk.

// ErrObjectExists is returned by Put when the key is already taken.
var ErrObjectExists = errors.New("object already exists")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// URL is the stable address of the object returned by Put.
type ObjectInfo struct {
	Key          string
	URL          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Keys are written once: Put refuses an existing key with ErrObjectExists.
type Storage interface {
	// Put uploads an object under a key that must not exist yet.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// objectURL joins a base address and an object key, escaping each key segment.
func objectURL(base, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segs, "/")
}
