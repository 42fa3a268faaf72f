package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var _ BlobStore = (*LocalStore)(nil)

// LocalStore adjuntos en el directorio del sitio (root/private/files, root/public/files).
type LocalStore struct {
	root string
}

// NewLocalStore construye el almacenamiento local sobre root.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) abs(fileURL string) (string, error) {
	rel, err := relativePath(fileURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Read lee el archivo completo.
func (s *LocalStore) Read(_ context.Context, fileURL string) ([]byte, error) {
	p, err := s.abs(fileURL)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fileURL)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileURL, err)
	}
	return b, nil
}

// Write crea o reemplaza el archivo, creando directorios si hace falta.
func (s *LocalStore) Write(_ context.Context, fileURL string, data []byte) error {
	p, err := s.abs(fileURL)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fileURL, err)
	}
	return nil
}

// Exists indica si el archivo existe.
func (s *LocalStore) Exists(_ context.Context, fileURL string) (bool, error) {
	p, err := s.abs(fileURL)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", fileURL, err)
	}
	return true, nil
}

// Rename mueve el archivo. Falla si el origen no existe.
func (s *LocalStore) Rename(_ context.Context, oldURL, newURL string) error {
	from, err := s.abs(oldURL)
	if err != nil {
		return err
	}
	to, err := s.abs(newURL)
	if err != nil {
		return err
	}
	if err := os.Rename(from, to); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, oldURL)
		}
		return fmt.Errorf("rename %s: %w", oldURL, err)
	}
	return nil
}
