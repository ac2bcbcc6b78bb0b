package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	supabase "github.com/supabase-community/storage-go"
)

// listPageSize is the most entries the storage API returns per list call
const listPageSize = 1000

// objectClient is the part of the storage-go client the store uses
type objectClient interface {
	ListFiles(bucketID, queryPath string, options supabase.FileSearchOptions) ([]supabase.FileObject, error)
	DownloadFile(bucketID, filePath string, urlOptions ...supabase.UrlOptions) ([]byte, error)
}

// SupabaseStorage reads assets from a Supabase Storage bucket
type SupabaseStorage struct {
	client  objectClient
	bucket  string
	baseURL string
}

// NewSupabaseStorage creates a store for bucket on the given project URL
func NewSupabaseStorage(supabaseURL, serviceRoleKey, bucket string) *SupabaseStorage {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &SupabaseStorage{
		client:  supabase.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Exists lists the key's directory page by page and looks for the file
// name. The storage API has no HEAD equivalent for private buckets.
func (s *SupabaseStorage) Exists(ctx context.Context, key string) (bool, error) {
	dir, name := path.Split(key)
	dir = strings.TrimSuffix(dir, "/")
	for offset := 0; ; offset += listPageSize {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		files, err := s.client.ListFiles(s.bucket, dir, supabase.FileSearchOptions{
			Limit:         listPageSize,
			Offset:        offset,
			SortByOptions: supabase.SortBy{Column: "name", Order: "asc"},
		})
		if err != nil {
			return false, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		for _, f := range files {
			if f.Name == name {
				return true, nil
			}
		}
		if len(files) < listPageSize {
			return false, nil
		}
	}
}

// Open downloads the object into memory
func (s *SupabaseStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		// the client does not expose status codes, so tell a missing object apart by listing
		if ok, lookupErr := s.Exists(ctx, key); lookupErr == nil && !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// URL returns the public object URL
func (s *SupabaseStorage) URL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
