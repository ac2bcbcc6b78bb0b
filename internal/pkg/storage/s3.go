package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3Config holds S3 / MinIO connection settings
type S3Config struct {
	Endpoint  string // empty for AWS
	Region    string
	Bucket    string
	Prefix    string // key prefix inside the bucket
	AccessKey string
	SecretKey string
	PublicURL string // optional CDN base
}

// S3Storage implements Store for AWS S3 or any S3-compatible service
type S3Storage struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Storage creates a new S3/MinIO storage instance
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
		}
	}

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Exists issues a HEAD request; a 404 is a clean "no"
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head %s: %w", key, err)
	}
	return true, nil
}

// Open retrieves an object body
func (s *S3Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return result.Body, nil
}

// URL returns the public URL for an object
func (s *S3Storage) URL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, s.objectKey(key))
}

// isNotFound recognises the shapes a missing object takes across S3,
// MinIO and R2: typed errors, bare API codes, and HEAD's body-less 404.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
