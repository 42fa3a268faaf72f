// Package certificate generación de certificados de retención (fuente, IVA, ICA) por tercero.
package certificate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/ledger"
	"github.com/va-app/va-dian/internal/domain/repository"
	"github.com/va-app/va-dian/internal/domain/tercero"
	pkgdian "github.com/va-app/va-dian/pkg/dian"
)

const dateLayout = "2006-01-02"

// UseCase genera certificados a partir del libro mayor.
type UseCase struct {
	certs    repository.CertificateRepository
	gl       repository.GLEntryRepository
	accounts repository.AccountRepository
	resolver *tercero.Resolver
	tx       TxRunner
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	certs repository.CertificateRepository,
	gl repository.GLEntryRepository,
	accounts repository.AccountRepository,
	resolver *tercero.Resolver,
	tx TxRunner,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		certs:    certs,
		gl:       gl,
		accounts: accounts,
		resolver: resolver,
		tx:       tx,
		log:      log,
		now:      time.Now,
	}
}

// pairTotals saldos (débito − crédito) de un tercero para un par (cuenta base, cuenta de retención).
// El valor absoluto se toma al armar el certificado, después de netear las reversiones.
type pairTotals struct {
	base     decimal.Decimal
	retained decimal.Decimal
}

// terceroTotals detalle de un tercero, en el orden de las filas de la configuración.
type terceroTotals struct {
	nit   string
	pairs []pairTotals
}

// Generate crea o reemplaza un certificado por tercero para la configuración y el periodo.
// Ejecutarla dos veces con los mismos datos actualiza los certificados existentes y no los duplica.
// Los certificados del periodo cuyo tercero ya no tiene saldo se eliminan.
func (uc *UseCase) Generate(ctx context.Context, req dto.GenerateCertificatesRequest) (*dto.GenerateCertificatesResponse, error) {
	from, to, err := parsePeriod(req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}
	cfg, err := uc.certs.GetConfig(ctx, req.Config)
	if err != nil {
		return nil, fmt.Errorf("get certificate config %s: %w", req.Config, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuración %s: %w", req.Config, domain.ErrNotFound)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	totals, concepts, err := uc.aggregate(ctx, cfg, from, to)
	if err != nil {
		return nil, err
	}

	out := &dto.GenerateCertificatesResponse{Created: []string{}, Updated: []string{}, Deleted: []string{}}
	now := uc.now()
	err = uc.tx.RunCertificates(ctx, func(certs repository.CertificateRepository) error {
		kept := make(map[string]bool, len(totals))
		for _, t := range totals {
			cert := buildCertificate(cfg, t, concepts, from, to)
			if len(cert.Details) == 0 {
				continue
			}
			kept[t.nit] = true
			if err := validateCertificate(cert); err != nil {
				return err
			}
			existing, err := certs.FindExisting(ctx, cfg.Name, t.nit, from, to)
			if err != nil {
				return fmt.Errorf("find certificate %s: %w", t.nit, err)
			}
			if existing != nil {
				cert.Name = existing.Name
				cert.CreatedAt = existing.CreatedAt
				cert.UpdatedAt = now
				if err := certs.Update(ctx, cert); err != nil {
					return fmt.Errorf("update certificate %s: %w", cert.Name, err)
				}
				out.Updated = append(out.Updated, cert.Name)
				continue
			}
			cert.Name = uuid.New().String()
			cert.CreatedAt = now
			cert.UpdatedAt = now
			if err := certs.Create(ctx, cert); err != nil {
				return fmt.Errorf("create certificate %s: %w", t.nit, err)
			}
			out.Created = append(out.Created, cert.Name)
		}

		previous, err := certs.ListByPeriod(ctx, cfg.Name, from, to)
		if err != nil {
			return fmt.Errorf("list certificates: %w", err)
		}
		for _, c := range previous {
			if kept[c.Tercero] {
				continue
			}
			if err := certs.Delete(ctx, c.Name); err != nil {
				return fmt.Errorf("delete certificate %s: %w", c.Name, err)
			}
			out.Deleted = append(out.Deleted, c.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("config", cfg.Name).
		Str("from", req.FromDate).
		Str("to", req.ToDate).
		Int("created", len(out.Created)).
		Int("updated", len(out.Updated)).
		Int("deleted", len(out.Deleted)).
		Msg("certificados generados")
	return out, nil
}

// aggregate suma débito − crédito por tercero y par de cuentas. Las líneas sin tercero se omiten.
func (uc *UseCase) aggregate(ctx context.Context, cfg *entity.CertificateConfig, from, to time.Time) ([]*terceroTotals, []string, error) {
	session := uc.resolver.Session()
	concepts := make([]string, len(cfg.Accounts))
	byNIT := make(map[string]*terceroTotals)
	var order []*terceroTotals

	for i, row := range cfg.Accounts {
		baseAcc, baseLeaves, err := ledger.ExpandAccount(ctx, uc.accounts, row.BaseAccount)
		if err != nil {
			return nil, nil, err
		}
		_, retLeaves, err := ledger.ExpandAccount(ctx, uc.accounts, row.RetentionAccount)
		if err != nil {
			return nil, nil, err
		}
		concepts[i] = baseAcc.AccountName
		if concepts[i] == "" {
			concepts[i] = baseAcc.Name
		}

		isBase := toSet(baseLeaves)
		isRet := toSet(retLeaves)
		entries, err := uc.gl.List(ctx, repository.GLEntryFilter{
			Company:          cfg.Company,
			FromDate:         &from,
			ToDate:           &to,
			Accounts:         append(append([]string{}, baseLeaves...), retLeaves...),
			ExcludeCancelled: true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("list gl entries: %w", err)
		}

		for _, e := range entries {
			nit, err := session.ResolvePartyID(ctx, e.Party, e.Voucher)
			if err != nil {
				return nil, nil, err
			}
			if nit == tercero.UnknownParty {
				uc.log.Debug().Str("gl_entry", e.Name).Msg("línea sin tercero; se omite")
				continue
			}
			t, ok := byNIT[nit]
			if !ok {
				t = &terceroTotals{nit: nit, pairs: make([]pairTotals, len(cfg.Accounts))}
				for j := range t.pairs {
					t.pairs[j] = pairTotals{base: decimal.Zero, retained: decimal.Zero}
				}
				byNIT[nit] = t
				order = append(order, t)
			}
			amount := e.Debit.Sub(e.Credit)
			switch {
			case isBase[e.Account]:
				t.pairs[i].base = t.pairs[i].base.Add(amount)
			case isRet[e.Account]:
				t.pairs[i].retained = t.pairs[i].retained.Add(amount)
			}
		}
	}
	return order, concepts, nil
}

func buildCertificate(cfg *entity.CertificateConfig, t *terceroTotals, concepts []string, from, to time.Time) *entity.Certificate {
	cert := &entity.Certificate{
		Config:          cfg.Name,
		CertificateType: cfg.CertificateType,
		Tercero:         t.nit,
		FromDate:        from,
		ToDate:          to,
		Year:            from.Year(),
		Municipio:       cfg.Municipio,
		TotalBase:       decimal.Zero,
		TotalRetention:  decimal.Zero,
	}
	for i, row := range cfg.Accounts {
		base, retained := t.pairs[i].base.Abs(), t.pairs[i].retained.Abs()
		if base.IsZero() && retained.IsZero() {
			continue
		}
		cert.Details = append(cert.Details, entity.CertificateDetail{
			BaseAccount:      row.BaseAccount,
			RetentionAccount: row.RetentionAccount,
			Concepto:         concepts[i],
			BaseAmount:       base,
			RetainedAmount:   retained,
		})
		cert.TotalBase = cert.TotalBase.Add(base)
		cert.TotalRetention = cert.TotalRetention.Add(retained)
	}
	return cert
}

// ValidateConfig reglas de la configuración: tipo conocido, municipio solo (y siempre) para ICA,
// al menos un par de cuentas y cuenta base distinta de la de retención.
func ValidateConfig(cfg *entity.CertificateConfig) error {
	if !pkgdian.ValidCertificateTypes[cfg.CertificateType] {
		return fmt.Errorf("%w: tipo de certificado %q", domain.ErrInvalidInput, cfg.CertificateType)
	}
	isICA := cfg.CertificateType == pkgdian.RetencionICA
	if isICA && cfg.Municipio == "" {
		return fmt.Errorf("%w: el municipio es obligatorio para certificados ICA", domain.ErrInvalidInput)
	}
	if !isICA && cfg.Municipio != "" {
		return fmt.Errorf("%w: el municipio solo aplica para ICA", domain.ErrInvalidInput)
	}
	if len(cfg.Accounts) == 0 {
		return fmt.Errorf("%w: la configuración %s no tiene cuentas", domain.ErrInvalidInput, cfg.Name)
	}
	for _, row := range cfg.Accounts {
		if row.BaseAccount == "" || row.RetentionAccount == "" {
			return fmt.Errorf("%w: cuenta base y cuenta de retención son obligatorias", domain.ErrInvalidInput)
		}
		if row.BaseAccount == row.RetentionAccount {
			return fmt.Errorf("%w: la cuenta base y la de retención deben ser distintas (%s)", domain.ErrInvalidInput, row.BaseAccount)
		}
	}
	return nil
}

// validateCertificate fechas ordenadas y totales iguales a la suma de los detalles.
func validateCertificate(c *entity.Certificate) error {
	if c.FromDate.After(c.ToDate) {
		return fmt.Errorf("%w: la fecha inicial no puede ser posterior a la final", domain.ErrInvalidInput)
	}
	base, retained := decimal.Zero, decimal.Zero
	for _, d := range c.Details {
		base = base.Add(d.BaseAmount)
		retained = retained.Add(d.RetainedAmount)
	}
	if !retained.Equal(c.TotalRetention) || !base.Equal(c.TotalBase) {
		return fmt.Errorf("%w: el total de los detalles (%s) no coincide con el del certificado (%s)",
			domain.ErrConflict, retained, c.TotalRetention)
	}
	return nil
}

func parsePeriod(fromS, toS string) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, fromS)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	to, err := time.Parse(dateLayout, toS)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from_date posterior a to_date", domain.ErrInvalidInput)
	}
	return from, to, nil
}

func toSet(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
