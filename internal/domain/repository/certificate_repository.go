package repository

import (
	"context"
	"time"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// CertificateRepository persistencia de configuraciones y certificados de retención.
type CertificateRepository interface {
	GetConfig(ctx context.Context, name string) (*entity.CertificateConfig, error)
	// FindExisting devuelve el certificado de la misma configuración, tercero y periodo, o nil.
	FindExisting(ctx context.Context, config, tercero string, from, to time.Time) (*entity.Certificate, error)
	Create(ctx context.Context, c *entity.Certificate) error
	// Update reemplaza totales y detalles del certificado.
	Update(ctx context.Context, c *entity.Certificate) error
	ListByPeriod(ctx context.Context, config string, from, to time.Time) ([]*entity.Certificate, error)
	// Delete elimina el certificado y sus detalles.
	Delete(ctx context.Context, name string) error
}
