package dian

import (
	"context"

	"github.com/va-app/va-dian/internal/domain/repository"
)

// BlobStore bytes de los adjuntos, identificados por su file_url.
type BlobStore interface {
	Read(ctx context.Context, fileURL string) ([]byte, error)
	Write(ctx context.Context, fileURL string, data []byte) error
	Exists(ctx context.Context, fileURL string) (bool, error)
	Rename(ctx context.Context, oldURL, newURL string) error
}

// TxRunner ejecuta fn en una transacción con los repositorios de documentos y adjuntos.
type TxRunner interface {
	RunDocuments(ctx context.Context, fn func(
		docs repository.DIANDocumentRepository,
		files repository.FileRepository,
	) error) error
}
