package imagesource

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config locates an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Reader reads objects with minio-go.
type S3Reader struct {
	client *minio.Client
}

// NewS3Reader connects lazily; no request is made until ReadObject.
func NewS3Reader(cfg S3Config) (*S3Reader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	opts := &minio.Options{
		Secure: cfg.UseSSL,
		Region: region,
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts.Creds = credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), "")
	} else {
		opts.Creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Reader{client: client}, nil
}

// ReadObject returns at most limit bytes of bucket/key.
func (r *S3Reader) ReadObject(ctx context.Context, bucket, key string, limit int64) ([]byte, error) {
	info, err := r.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, describeS3(err)
	}
	if info.Size > limit {
		return nil, ErrTooLarge
	}

	obj, err := r.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, describeS3(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, limit))
	if err != nil {
		return nil, describeS3(err)
	}
	return data, nil
}

func describeS3(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("s3: %s: %w", resp.Message, fs.ErrNotExist)
	}
	return fmt.Errorf("s3: %w", err)
}
