// Package minio stores fragment and reaction libraries in MinIO or any
// S3-compatible object store and serves them to the engine by s3:// URI.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// objectAPI is the part of *minio.Client used here.
type objectAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Client is a connected object-store client.
type Client struct {
	api    objectAPI
	region string
	logger logging.Logger
}

// NewClient connects to cfg.Endpoint and verifies the credentials by
// listing buckets.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.CodeConfigInvalid, "minio endpoint is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to create minio client")
	}

	c := newClientWithAPI(api, cfg.Region, log)
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.HealthCheck(pingCtx); err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newClientWithAPI(api objectAPI, region string, log logging.Logger) *Client {
	return &Client{api: api, region: region, logger: log.Named("minio")}
}

// Name identifies the client in readiness reports.
func (c *Client) Name() string { return "minio" }

// HealthCheck lists buckets to confirm the endpoint answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListBuckets(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	return nil
}

// EnsureBucket creates bucket when it does not exist.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.api.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to check bucket").WithDetail(bucket)
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to create bucket").WithDetail(bucket)
	}
	c.logger.Info("Created bucket", logging.String("bucket", bucket))
	return nil
}

//Personal.AI order the ending
