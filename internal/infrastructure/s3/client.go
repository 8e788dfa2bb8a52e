package s3infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Store wraps the S3 operations used for school images.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewClient creates an S3 client. A non-empty endpoint (LocalStack) overrides
// the default resolver and switches to path-style addressing.
func NewClient(awsCfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

// NewStore creates a Store. publicBaseURL may be empty, in which case
// returned URLs use the s3:// scheme.
func NewStore(client *s3.Client, bucket, publicBaseURL string) *Store {
	return &Store{client: client, bucket: bucket, publicBaseURL: publicBaseURL}
}

// Upload streams an object to S3 under key and returns its URL.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return ObjectURL(s.publicBaseURL, s.bucket, key), nil
}

// Delete removes an object from S3.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}

// ObjectURL builds the URL clients use to fetch key.
func ObjectURL(publicBaseURL, bucket, key string) string {
	if publicBaseURL != "" {
		return publicBaseURL + "/" + key
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

// EnsureBucket creates the bucket if it does not exist yet.
// Safe to call on every startup.
func (s *Store) EnsureBucket(ctx context.Context) {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		slog.Info("created bucket", "bucket", s.bucket)
		return
	}
	var owned *types.BucketAlreadyOwnedByYou
	var exists *types.BucketAlreadyExists
	if !errors.As(err, &owned) && !errors.As(err, &exists) {
		slog.Warn("could not create bucket", "bucket", s.bucket, "err", err)
	}
}
