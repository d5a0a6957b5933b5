package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

var ErrStorageNotConfigured = errors.New("supabase storage is not configured")

// SupabaseStorage wraps one bucket of a Supabase storage project.
type SupabaseStorage struct {
	client *storage.Client
	bucket string
}

// NewSupabaseStorage returns nil when url or key is empty.
func NewSupabaseStorage(supabaseURL, supabaseKey, bucket string) *SupabaseStorage {
	if supabaseURL == "" || supabaseKey == "" {
		return nil
	}
	return &SupabaseStorage{
		client: storage.NewClient(strings.TrimRight(supabaseURL, "/")+"/storage/v1", supabaseKey, nil),
		bucket: bucket,
	}
}

// Upload writes data under objectPath (upsert) and returns its public URL.
func (s *SupabaseStorage) Upload(objectPath string, data io.Reader, contentType string) (string, error) {
	if s == nil {
		return "", ErrStorageNotConfigured
	}
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, data, options); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}

	publicURL := s.client.GetPublicUrl(s.bucket, objectPath)
	return publicURL.SignedURL, nil
}

// UploadBytes is Upload for in-memory content (generated PDFs).
func (s *SupabaseStorage) UploadBytes(objectPath string, data []byte, contentType string) (string, error) {
	return s.Upload(objectPath, bytes.NewReader(data), contentType)
}

func (s *SupabaseStorage) Download(objectPath string) ([]byte, error) {
	if s == nil {
		return nil, ErrStorageNotConfigured
	}
	data, err := s.client.DownloadFile(s.bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", objectPath, err)
	}
	return data, nil
}
