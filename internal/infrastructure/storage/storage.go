// Package storage guarda los bytes de los adjuntos (XML y PDF) de los documentos DIAN,
// en disco con la estructura de un sitio del ERP o en un bucket compatible con S3.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/pkg/config"
)

// ErrNotFound el archivo no existe en el almacenamiento. Envuelve domain.ErrNotFound.
var ErrNotFound = fmt.Errorf("storage: archivo no encontrado: %w", domain.ErrNotFound)

// BlobStore operaciones sobre los bytes de un adjunto identificado por su file_url.
type BlobStore interface {
	Read(ctx context.Context, fileURL string) ([]byte, error)
	Write(ctx context.Context, fileURL string, data []byte) error
	Exists(ctx context.Context, fileURL string) (bool, error)
	Rename(ctx context.Context, oldURL, newURL string) error
}

// New construye el BlobStore según STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal:
		return NewLocalStore(cfg.Root), nil
	case config.StorageDriverS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Driver)
	}
}

// relativePath traduce un file_url a la ruta relativa dentro del sitio ("private/files/x", "public/files/x").
func relativePath(fileURL string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(fileURL))
	switch {
	case strings.HasPrefix(clean, entity.PrivateFilesPrefix):
		return strings.TrimPrefix(clean, "/"), nil
	case strings.HasPrefix(clean, entity.PublicFilesPrefix):
		return "public" + clean, nil
	default:
		return "", fmt.Errorf("storage: file_url no soportado %q", fileURL)
	}
}
