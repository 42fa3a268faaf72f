package certificate

import (
	"context"

	"github.com/va-app/va-dian/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con el repositorio de certificados.
type TxRunner interface {
	RunCertificates(ctx context.Context, fn func(certs repository.CertificateRepository) error) error
}
