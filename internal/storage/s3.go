package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"medialib/internal/config"
)

// s3Storage implements Storage on top of the AWS SDK. A custom endpoint with
// path-style addressing makes it usable against MinIO as well.
type s3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	bucket   string
	baseURL  string
}

// NewS3 creates an S3 storage client. Static credentials are used when both keys
// are set; otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg config.S3Config) (Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &s3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.Bucket,
		baseURL:  s3BaseURL(cfg),
	}, nil
}

func s3BaseURL(cfg config.S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "" && cfg.UsePathStyle:
		return objectURL(cfg.Endpoint, cfg.Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Put streams r through the multipart upload manager. The write is
// conditional on the key being absent.
func (s *s3Storage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		Metadata:    opt.Metadata,
		IfNoneMatch: aws.String("*"),
	}
	if opt.ContentType != "" {
		in.ContentType = aws.String(opt.ContentType)
	}

	out, err := s.uploader.Upload(ctx, in)
	if err != nil {
		if isKeyTaken(err) {
			return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		URL:          objectURL(s.baseURL, key),
		Size:         opt.Size,
		ETag:         aws.ToString(out.ETag),
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

// isKeyTaken reports a failed If-None-Match precondition, or a concurrent
// conditional write to the same key.
func isKeyTaken(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

func (s *s3Storage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Key:         key,
		URL:         objectURL(s.baseURL, key),
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        aws.ToString(out.ETag),
		ContentType: aws.ToString(out.ContentType),
		Metadata:    out.Metadata,
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return out.Body, info, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *s3Storage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
