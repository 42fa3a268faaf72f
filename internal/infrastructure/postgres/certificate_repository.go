package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

var _ repository.CertificateRepository = (*CertificateRepo)(nil)

// CertificateRepo configuraciones (tabDIAN_Certificado_Config) y certificados (tabDIAN_Certificado)
// con sus tablas hijas de cuentas y detalles.
type CertificateRepo struct {
	q Querier
}

// NewCertificateRepository construye el adaptador. Pasar pool o tx (Querier);
// Create y Update escriben varias tablas y deben correr dentro de una tx.
func NewCertificateRepository(q Querier) *CertificateRepo {
	return &CertificateRepo{q: q}
}

// GetConfig obtiene la configuración con sus pares de cuentas en orden (idx).
func (r *CertificateRepo) GetConfig(ctx context.Context, name string) (*entity.CertificateConfig, error) {
	var c entity.CertificateConfig
	err := r.q.QueryRow(ctx, `
		SELECT name, COALESCE(company, ''), COALESCE(certificate_type, ''), COALESCE(municipio, '')
		FROM "tabDIAN_Certificado_Config" WHERE name = $1`, name,
	).Scan(&c.Name, &c.Company, &c.CertificateType, &c.Municipio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get certificado config: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(base_account, ''), COALESCE(retention_account, '')
		FROM "tabDIAN_Certificado_Config_Cuenta" WHERE parent = $1 ORDER BY idx`, name)
	if err != nil {
		return nil, fmt.Errorf("list config cuentas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.CertificateConfigAccount
		if err := rows.Scan(&a.BaseAccount, &a.RetentionAccount); err != nil {
			return nil, fmt.Errorf("scan config cuenta: %w", err)
		}
		c.Accounts = append(c.Accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

const certificateColumns = `name, COALESCE(certificado_config, ''), COALESCE(certificate_type, ''),
	COALESCE(dian_tercero, ''), from_date, to_date, COALESCE(year, 0), COALESCE(municipio, ''),
	COALESCE(total_base, 0), COALESCE(total_retained, 0), creation, modified`

// FindExisting busca el certificado de la misma configuración, tercero y periodo.
func (r *CertificateRepo) FindExisting(ctx context.Context, config, tercero string, from, to time.Time) (*entity.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM "tabDIAN_Certificado"
		WHERE certificado_config = $1 AND dian_tercero = $2 AND from_date = $3 AND to_date = $4
		ORDER BY creation LIMIT 1`
	c, err := scanCertificate(r.q.QueryRow(ctx, query, config, tercero, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find certificado: %w", err)
	}
	if err := r.loadDetails(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserta el certificado y sus detalles.
func (r *CertificateRepo) Create(ctx context.Context, c *entity.Certificate) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO "tabDIAN_Certificado" (name, certificado_config, certificate_type, dian_tercero,
			from_date, to_date, year, municipio, total_base, total_retained, creation, modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.Name, c.Config, c.CertificateType, c.Tercero, c.FromDate, c.ToDate, c.Year,
		nullIfEmpty(c.Municipio), c.TotalBase, c.TotalRetention, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create certificado %s: %w", c.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert certificado: %w", err)
	}
	return r.insertDetails(ctx, c)
}

// Update reemplaza totales y detalles.
func (r *CertificateRepo) Update(ctx context.Context, c *entity.Certificate) error {
	c.UpdatedAt = time.Now()
	tag, err := r.q.Exec(ctx, `
		UPDATE "tabDIAN_Certificado" SET certificate_type = $2, municipio = $3, year = $4,
			total_base = $5, total_retained = $6, modified = $7
		WHERE name = $1`,
		c.Name, c.CertificateType, nullIfEmpty(c.Municipio), c.Year, c.TotalBase, c.TotalRetention, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update certificado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update certificado %s: %w", c.Name, domain.ErrNotFound)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM "tabDIAN_Certificado_Detalle" WHERE parent = $1`, c.Name); err != nil {
		return fmt.Errorf("delete detalles: %w", err)
	}
	return r.insertDetails(ctx, c)
}

// ListByPeriod certificados de una configuración para el periodo exacto.
func (r *CertificateRepo) ListByPeriod(ctx context.Context, config string, from, to time.Time) ([]*entity.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM "tabDIAN_Certificado"
		WHERE certificado_config = $1 AND from_date = $2 AND to_date = $3
		ORDER BY creation, name`
	rows, err := r.q.Query(ctx, query, config, from, to)
	if err != nil {
		return nil, fmt.Errorf("list certificados: %w", err)
	}
	var list []*entity.Certificate
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan certificado: %w", err)
		}
		list = append(list, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range list {
		if err := r.loadDetails(ctx, c); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Delete elimina el certificado y sus detalles.
func (r *CertificateRepo) Delete(ctx context.Context, name string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM "tabDIAN_Certificado_Detalle" WHERE parent = $1`, name); err != nil {
		return fmt.Errorf("delete detalles: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM "tabDIAN_Certificado" WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete certificado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete certificado %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (r *CertificateRepo) insertDetails(ctx context.Context, c *entity.Certificate) error {
	for i, d := range c.Details {
		_, err := r.q.Exec(ctx, `
			INSERT INTO "tabDIAN_Certificado_Detalle" (name, parent, parenttype, parentfield, idx,
				base_account, retention_account, concepto, base_amount, retained_amount, config_reference,
				creation, modified)
			VALUES ($1, $2, 'DIAN_Certificado', 'details', $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			uuid.New().String(), c.Name, i+1, d.BaseAccount, d.RetentionAccount, d.Concepto,
			d.BaseAmount, d.RetainedAmount, c.Config, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert detalle: %w", err)
		}
	}
	return nil
}

func (r *CertificateRepo) loadDetails(ctx context.Context, c *entity.Certificate) error {
	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(base_account, ''), COALESCE(retention_account, ''), COALESCE(concepto, ''),
			COALESCE(base_amount, 0), COALESCE(retained_amount, 0)
		FROM "tabDIAN_Certificado_Detalle" WHERE parent = $1 ORDER BY idx`, c.Name)
	if err != nil {
		return fmt.Errorf("list detalles: %w", err)
	}
	defer rows.Close()
	c.Details = nil
	for rows.Next() {
		var d entity.CertificateDetail
		if err := rows.Scan(&d.BaseAccount, &d.RetentionAccount, &d.Concepto, &d.BaseAmount, &d.RetainedAmount); err != nil {
			return fmt.Errorf("scan detalle: %w", err)
		}
		c.Details = append(c.Details, d)
	}
	return rows.Err()
}

func scanCertificate(row pgx.Row) (*entity.Certificate, error) {
	var c entity.Certificate
	err := row.Scan(
		&c.Name, &c.Config, &c.CertificateType, &c.Tercero, &c.FromDate, &c.ToDate, &c.Year,
		&c.Municipio, &c.TotalBase, &c.TotalRetention, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
