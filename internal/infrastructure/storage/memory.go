package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"

	catalogapp "github.com/pozinox/backend/internal/application/catalog"
	"github.com/pozinox/backend/internal/domain/shared"
)

// MemoryImageStorage keeps images in memory. It backs development setups
// without object storage; URLs point at BaseURL.
type MemoryImageStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryImageStorage creates an empty in-memory store
func NewMemoryImageStorage(baseURL string) *MemoryImageStorage {
	return &MemoryImageStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

// Upload stores a copy of data under key
func (s *MemoryImageStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key; missing keys are ignored like S3 does
func (s *MemoryImageStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// URL returns BaseURL/key for stored objects
func (s *MemoryImageStorage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", shared.ErrNotFound
	}
	return s.BaseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}

// Get returns the stored bytes for key
func (s *MemoryImageStorage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

// Ensure MemoryImageStorage implements ImageStorage
var _ catalogapp.ImageStorage = (*MemoryImageStorage)(nil)
