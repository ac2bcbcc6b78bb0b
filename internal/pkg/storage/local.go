package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage reads assets from a directory, typically the site's
// public/images tree
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a local storage rooted at basePath
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset directory: %s is not a directory", basePath)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// fullPath rejects keys escaping the base directory
func (s *LocalStorage) fullPath(key string) (string, error) {
	if !fs.ValidPath(key) {
		return "", fmt.Errorf("invalid asset key %q", key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}

// Exists checks if a regular file exists under key
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Open opens a file for reading
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// URL returns the public URL for a locally stored file
func (s *LocalStorage) URL(key string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}
