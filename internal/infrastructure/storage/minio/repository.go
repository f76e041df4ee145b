package minio

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// Scheme prefixes library locations held in object storage.
const Scheme = "s3://"

var ErrObjectNotFound = errors.New(errors.CodeNotFound, "object not found")

// IsURI reports whether location names an object-store library.
func IsURI(location string) bool { return strings.HasPrefix(location, Scheme) }

// ParseURI splits s3://bucket/key.
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsURI(uri) {
		return "", "", errors.New(errors.ErrCodeValidation, "library uri must start with s3://").WithDetail(uri)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, Scheme), "/")
	if bucket == "" || key == "" {
		return "", "", errors.New(errors.ErrCodeValidation, "library uri must look like s3://bucket/key").WithDetail(uri)
	}
	return bucket, key, nil
}

// LibraryRepository reads and writes library files by s3:// URI.
type LibraryRepository interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	Put(ctx context.Context, uri string, r io.Reader, size int64) error
}

type libraryRepository struct {
	client *Client
	logger logging.Logger
}

// NewLibraryRepository returns a LibraryRepository over client.
func NewLibraryRepository(client *Client, log logging.Logger) LibraryRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &libraryRepository{client: client, logger: log}
}

// Open streams the object at uri.  The object is stat'ed first so a missing
// key fails here rather than on the first Read.
func (r *libraryRepository) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	info, err := r.client.api.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" || minio.ToErrorResponse(err).Code == "NoSuchBucket" {
			return nil, ErrObjectNotFound.WithDetail(uri)
		}
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to stat library").WithDetail(uri)
	}
	obj, err := r.client.api.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to open library").WithDetail(uri)
	}
	r.logger.Debug("Library opened", logging.String("uri", uri), logging.Int64("size", info.Size))
	return obj, nil
}

// Put uploads r to uri, creating the bucket when needed.  size may be -1
// when unknown.
func (r *libraryRepository) Put(ctx context.Context, uri string, body io.Reader, size int64) error {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return err
	}
	if err := r.client.EnsureBucket(ctx, bucket); err != nil {
		return err
	}
	contentType := "text/plain"
	if strings.HasSuffix(key, ".yaml") || strings.HasSuffix(key, ".yml") {
		contentType = "application/yaml"
	}
	info, err := r.client.api.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to upload library").WithDetail(uri)
	}
	r.logger.Info("Library uploaded", logging.String("uri", uri), logging.Int64("size", info.Size))
	return nil
}

//Personal.AI order the ending
