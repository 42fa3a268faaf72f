package repository

import (
	"context"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// DIANDocumentRepository define el puerto de persistencia para la tabla "DIAN document".
type DIANDocumentRepository interface {
	Create(ctx context.Context, doc *entity.DIANDocument) error
	GetByName(ctx context.Context, name string) (*entity.DIANDocument, error)
	// GetByCufe devuelve el documento que ya tiene ese CUFE, o nil.
	GetByCufe(ctx context.Context, cufe string) (*entity.DIANDocument, error)
	Update(ctx context.Context, doc *entity.DIANDocument) error
	SetStatus(ctx context.Context, name, status string) error
	// Rename cambia la llave del documento y reengancha sus adjuntos.
	Rename(ctx context.Context, oldName, newName string) error
}

// FileRepository define el puerto de persistencia para los adjuntos (tabla "File").
type FileRepository interface {
	Create(ctx context.Context, f *entity.File) error
	GetByURL(ctx context.Context, fileURL string) (*entity.File, error)
	// ListAttachedTo lista los adjuntos de un registro en orden de creación.
	ListAttachedTo(ctx context.Context, doctype, name string) ([]*entity.File, error)
	Update(ctx context.Context, f *entity.File) error
}
