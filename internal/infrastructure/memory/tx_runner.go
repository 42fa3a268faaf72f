package memory

import (
	"context"

	"github.com/va-app/va-dian/internal/application/certificate"
	appdian "github.com/va-app/va-dian/internal/application/dian"
	"github.com/va-app/va-dian/internal/domain/repository"
)

var (
	_ appdian.TxRunner     = (*TxRunner)(nil)
	_ certificate.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta los callbacks directamente sobre los repositorios en memoria (sin rollback).
type TxRunner struct {
	Docs  repository.DIANDocumentRepository
	Files repository.FileRepository
	Certs repository.CertificateRepository
}

func (r *TxRunner) RunDocuments(_ context.Context, fn func(
	docs repository.DIANDocumentRepository,
	files repository.FileRepository,
) error) error {
	return fn(r.Docs, r.Files)
}

func (r *TxRunner) RunCertificates(_ context.Context, fn func(certs repository.CertificateRepository) error) error {
	return fn(r.Certs)
}
