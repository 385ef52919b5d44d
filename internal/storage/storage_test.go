package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medialib/internal/config"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"http://cdn.example.com/media/u1/folders/photos/a%20b.jpg",
		objectURL("http://cdn.example.com/media/", "u1/folders/photos/a b.jpg"),
	)
}

func TestS3BaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.S3Config
		want string
	}{
		{
			name: "public base url wins",
			cfg:  config.S3Config{Bucket: "b", Region: "eu-west-1", PublicBaseURL: "https://cdn.example.com"},
			want: "https://cdn.example.com",
		},
		{
			name: "path style custom endpoint",
			cfg:  config.S3Config{Bucket: "b", Endpoint: "http://localhost:9000", UsePathStyle: true},
			want: "http://localhost:9000/b",
		},
		{
			name: "virtual hosted aws",
			cfg:  config.S3Config{Bucket: "b", Region: "us-east-1"},
			want: "https://b.s3.us-east-1.amazonaws.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s3BaseURL(tt.cfg))
		})
	}
}

func TestMinioBaseURL(t *testing.T) {
	endpoint, err := url.Parse("http://localhost:9000")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/media", minioBaseURL(config.MinIOConfig{Bucket: "media"}, endpoint))
	assert.Equal(t, "https://cdn.example.com", minioBaseURL(config.MinIOConfig{Bucket: "media", PublicBaseURL: "https://cdn.example.com"}, endpoint))
}

func TestNewMinIO_Validation(t *testing.T) {
	_, err := NewMinIO(config.MinIOConfig{})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"})
	assert.EqualError(t, err, "minio bucket is required")
}

func TestIsKeyTaken(t *testing.T) {
	assert.True(t, isKeyTaken(&smithy.GenericAPIError{Code: "PreconditionFailed"}))
	assert.True(t, isKeyTaken(fmt.Errorf("upload: %w", &smithy.GenericAPIError{Code: "ConditionalRequestConflict"})))
	assert.False(t, isKeyTaken(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isKeyTaken(errors.New("connection reset")))
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNoSuchKey(minio.ErrorResponse{Code: "AccessDenied"}))
}

// fakeBucket answers the HEAD and PUT requests minio-go sends for one bucket.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]bool
	methods []string
	headErr int
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, r.Method)
	key := strings.TrimPrefix(r.URL.Path, "/media/")

	switch r.Method {
	case http.MethodHead:
		if f.headErr != 0 {
			w.WriteHeader(f.headErr)
			return
		}
		if !f.objects[key] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "3")
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		f.objects[key] = true
		w.Header().Set("ETag", `"def"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeBucket) sawPut() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.methods {
		if m == http.MethodPut {
			return true
		}
	}
	return false
}

func (f *fakeBucket) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

func newFakeMinio(t *testing.T, fb *fakeBucket) *minioStorage {
	t.Helper()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cli, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &minioStorage{client: cli, bucket: "media", baseURL: srv.URL + "/media"}
}

func TestMinioPut_RefusesExistingKey(t *testing.T) {
	fb := &fakeBucket{objects: map[string]bool{"u1/folders/trip/a.jpg": true}}
	store := newFakeMinio(t, fb)

	_, err := store.Put(context.Background(), "u1/folders/trip/a.jpg", strings.NewReader("new"), PutObjectOptions{Size: 3})

	assert.ErrorIs(t, err, ErrObjectExists)
	assert.False(t, fb.sawPut())
}

func TestMinioPut_NewKey(t *testing.T) {
	fb := &fakeBucket{objects: map[string]bool{}}
	store := newFakeMinio(t, fb)

	info, err := store.Put(context.Background(), "u1/folders/trip/b.jpg", strings.NewReader("new"), PutObjectOptions{Size: 3, ContentType: "image/jpeg"})

	require.NoError(t, err)
	assert.Equal(t, "u1/folders/trip/b.jpg", info.Key)
	assert.True(t, strings.HasSuffix(info.URL, "/media/u1/folders/trip/b.jpg"))
	assert.True(t, fb.has("u1/folders/trip/b.jpg"))
}

func TestMinioPut_StatFailure(t *testing.T) {
	fb := &fakeBucket{objects: map[string]bool{}, headErr: http.StatusForbidden}
	store := newFakeMinio(t, fb)

	_, err := store.Put(context.Background(), "u1/a.jpg", strings.NewReader("new"), PutObjectOptions{Size: 3})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectExists)
	assert.Contains(t, err.Error(), "stat object")
	assert.False(t, fb.sawPut())
}
