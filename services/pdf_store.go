package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vnkhanh/rental-server/utils"
)

// PDFStore persists rendered invoice PDFs under a storage key.
type PDFStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

type LocalPDFStore struct {
	dir string
}

func NewLocalPDFStore(dir string) *LocalPDFStore {
	return &LocalPDFStore{dir: dir}
}

func (s *LocalPDFStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *LocalPDFStore) Save(_ context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create pdf dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (s *LocalPDFStore) Load(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return data, nil
}

// SupabasePDFStore keeps PDFs in a Supabase storage bucket.
type SupabasePDFStore struct {
	storage *utils.SupabaseStorage
}

func NewSupabasePDFStore(storage *utils.SupabaseStorage) *SupabasePDFStore {
	return &SupabasePDFStore{storage: storage}
}

func (s *SupabasePDFStore) Save(_ context.Context, key string, data []byte) error {
	_, err := s.storage.UploadBytes(key, data, "application/pdf")
	return err
}

func (s *SupabasePDFStore) Load(_ context.Context, key string) ([]byte, error) {
	return s.storage.Download(key)
}
