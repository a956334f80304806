package services

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/speedrun/backend/internal/config"
)

// ObjectStore holds the binary payloads of assets. A container maps to a
// bucket.
type ObjectStore interface {
	// DeleteBlob returns ErrBlobNotFound when the blob is already absent.
	DeleteBlob(ctx context.Context, container, key string) error
}

// S3Service is the S3-compatible ObjectStore.
type S3Service struct {
	client *s3.Client
}

func NewS3Service(ctx context.Context, conn config.BlobConnection) (*S3Service, error) {
	client, err := buildClient(ctx, conn)
	if err != nil {
		return nil, err
	}
	return &S3Service{client: client}, nil
}

func buildClient(ctx context.Context, conn config.BlobConnection) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conn.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conn.AccessKeyID, conn.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = conn.UsePathStyle
		if conn.Endpoint != "" {
			o.BaseEndpoint = aws.String(conn.Endpoint)
		}
	})
	return client, nil
}

func (s *S3Service) DeleteBlob(ctx context.Context, container, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err == nil {
		return nil
	}
	if isS3NotFound(err) {
		return ErrBlobNotFound
	}
	return &StoreError{Op: "delete blob", Err: err}
}

// isS3NotFound reports a missing key. A missing bucket is not treated as
// not-found: it points at a bad container rather than an already deleted blob.
func isS3NotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
