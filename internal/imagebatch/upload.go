// imagebatch/upload.go - S3-compatible publishing of processed images
package imagebatch

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config for an S3-compatible endpoint
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
}

// S3Uploader wraps a MinIO client bound to one bucket
type S3Uploader struct {
	client *minio.Client
	bucket string
	region string
}

func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (u *S3Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", u.bucket, err)
	}
	return nil
}

func (u *S3Uploader) Upload(ctx context.Context, key, path string) error {
	opts := minio.PutObjectOptions{ContentType: "image/jpeg", CacheControl: "public, max-age=31536000"}
	if _, err := u.client.FPutObject(ctx, u.bucket, key, path, opts); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
