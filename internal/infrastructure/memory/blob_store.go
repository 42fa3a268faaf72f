package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/va-app/va-dian/internal/infrastructure/storage"
)

var _ storage.BlobStore = (*BlobStore)(nil)

// BlobStore contenido de adjuntos en memoria, indexado por file_url.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore construye el almacén vacío.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

func (s *BlobStore) Read(_ context.Context, fileURL string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[fileURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, fileURL)
	}
	return append([]byte(nil), b...), nil
}

func (s *BlobStore) Write(_ context.Context, fileURL string, data []byte) error {
	s.mu.Lock()
	s.blobs[fileURL] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

func (s *BlobStore) Exists(_ context.Context, fileURL string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[fileURL]
	return ok, nil
}

func (s *BlobStore) Rename(_ context.Context, oldURL, newURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[oldURL]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, oldURL)
	}
	delete(s.blobs, oldURL)
	s.blobs[newURL] = b
	return nil
}

// URLs file_urls guardados (sin orden).
func (s *BlobStore) URLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		out = append(out, k)
	}
	return out
}
