package repository

import (
	"context"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// TerceroRepository define el puerto de persistencia para la tabla "DIAN tercero".
type TerceroRepository interface {
	GetByNIT(ctx context.Context, nit string) (*entity.Tercero, error)
	// Upsert inserta el tercero o actualiza solo los campos de entity.Tercero.UpsertFields.
	Upsert(ctx context.Context, t *entity.Tercero) (created bool, err error)
	Search(ctx context.Context, query string, limit, offset int) ([]*entity.Tercero, error)
}
