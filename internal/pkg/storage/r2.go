package storage

import (
	"context"
	"fmt"
)

// R2Config holds R2 connection configuration
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string // e.g., https://images.example.com
}

// NewR2Storage creates a Cloudflare R2 store. R2 speaks the S3 API, so the
// S3 implementation is reused with the account endpoint.
func NewR2Storage(ctx context.Context, cfg R2Config) (*S3Storage, error) {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		// Fallback to direct R2 URL (requires public bucket)
		publicURL = fmt.Sprintf("https://%s.r2.dev", cfg.BucketName)
	}

	return NewS3Storage(ctx, S3Config{
		Endpoint:  fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
		Region:    "auto",
		Bucket:    cfg.BucketName,
		AccessKey: cfg.AccessKeyID,
		SecretKey: cfg.AccessKeySecret,
		PublicURL: publicURL,
	})
}
