package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/va-app/va-dian/internal/application/certificate"
	appdian "github.com/va-app/va-dian/internal/application/dian"
	"github.com/va-app/va-dian/internal/domain/repository"
)

var (
	_ appdian.TxRunner     = (*TxRunner)(nil)
	_ certificate.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunDocuments ejecuta fn con los repos de documentos y adjuntos atados a la tx.
func (r *TxRunner) RunDocuments(ctx context.Context, fn func(
	docs repository.DIANDocumentRepository,
	files repository.FileRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewDIANDocumentRepository(tx), NewFileRepository(tx))
	})
}

// RunCertificates ejecuta fn con el repo de certificados atado a la tx.
func (r *TxRunner) RunCertificates(ctx context.Context, fn func(certs repository.CertificateRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewCertificateRepository(tx))
	})
}

// run inicia la transacción y hace Commit si fn no falla; si no, Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
