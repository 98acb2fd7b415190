package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrTooLarge = errors.New("file exceeds upload limit")

// StorageService keeps attachment files under BaseDir.
type StorageService struct {
	BaseDir string
}

func NewStorageService(baseDir string) *StorageService {
	_ = os.MkdirAll(baseDir, 0755)
	return &StorageService{BaseDir: baseDir}
}

// resolve maps a slash separated key to a path inside BaseDir.
func (s *StorageService) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: storage key %q", ErrInvalidInput, key)
	}
	return filepath.Join(s.BaseDir, clean), nil
}

// Save streams r to key, writing at most maxBytes (no limit when <= 0). The
// file is written to a temp name and renamed, so readers never see a
// partial upload.
func (s *StorageService) Save(key string, r io.Reader, maxBytes int64) (int64, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if maxBytes > 0 && n > maxBytes {
		return 0, ErrTooLarge
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *StorageService) Open(key string) (*os.File, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

func (s *StorageService) Remove(key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
