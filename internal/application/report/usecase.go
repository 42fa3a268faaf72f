// Package report reportes del libro mayor agrupados por cuenta y tercero.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/ledger"
	"github.com/va-app/va-dian/internal/domain/repository"
	"github.com/va-app/va-dian/internal/domain/tercero"
)

const dateLayout = "2006-01-02"

// UseCase reportes sobre "GL Entry".
type UseCase struct {
	gl       repository.GLEntryRepository
	accounts repository.AccountRepository
	resolver *tercero.Resolver
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	gl repository.GLEntryRepository,
	accounts repository.AccountRepository,
	resolver *tercero.Resolver,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{gl: gl, accounts: accounts, resolver: resolver, log: log}
}

// GLSummary débitos, créditos y débito − crédito por cuenta y tercero en un rango de fechas.
// from_date y to_date son obligatorios.
func (uc *UseCase) GLSummary(ctx context.Context, req dto.LedgerReportRequest) (*dto.GLSummaryResponse, error) {
	if req.FromDate == "" || req.ToDate == "" {
		return nil, fmt.Errorf("%w: from_date y to_date son obligatorios", domain.ErrInvalidInput)
	}
	entries, err := uc.entries(ctx, req)
	if err != nil {
		return nil, err
	}
	rows, err := ledger.Summarize(ctx, entries, uc.resolver.Session(), ledger.GroupBy{
		VoucherType: req.GroupVoucherType,
		VoucherNo:   req.GroupVoucherNo,
	})
	if err != nil {
		return nil, fmt.Errorf("gl summary: %w", err)
	}
	if rows == nil {
		rows = []ledger.SummaryRow{}
	}
	uc.log.Debug().Int("entries", len(entries)).Int("rows", len(rows)).Msg("resumen del libro mayor")
	return &dto.GLSummaryResponse{Rows: rows}, nil
}

// BalanceByAccountAndParty líneas del libro mayor agrupadas cuenta -> tercero.
func (uc *UseCase) BalanceByAccountAndParty(ctx context.Context, req dto.LedgerReportRequest) (*dto.BalanceResponse, error) {
	entries, err := uc.entries(ctx, req)
	if err != nil {
		return nil, err
	}
	detail, err := ledger.GroupEntries(ctx, entries, uc.resolver.Session())
	if err != nil {
		return nil, fmt.Errorf("balance by account and party: %w", err)
	}
	rows := make([]dto.BalanceRow, 0, len(detail))
	for _, d := range detail {
		e := d.Entry
		rows = append(rows, dto.BalanceRow{
			Grouping:      d.Grouping,
			PartySelected: d.PartySelected,
			Tercero:       d.Tercero,
			Name:          e.Name,
			PostingDate:   e.PostingDate,
			Account:       e.Account,
			PartyType:     string(e.Party.Type),
			Party:         e.Party.ID,
			VoucherType:   string(e.Voucher.Type),
			VoucherNo:     e.Voucher.No,
			Debit:         e.Debit,
			Credit:        e.Credit,
		})
	}
	return &dto.BalanceResponse{Rows: rows}, nil
}

func (uc *UseCase) entries(ctx context.Context, req dto.LedgerReportRequest) ([]entity.GLEntry, error) {
	f := repository.GLEntryFilter{
		Company:          strings.TrimSpace(req.Company),
		ExcludeCancelled: !req.IncludeCancelled,
	}
	var err error
	if f.FromDate, err = parseDate("from_date", req.FromDate); err != nil {
		return nil, err
	}
	if f.ToDate, err = parseDate("to_date", req.ToDate); err != nil {
		return nil, err
	}
	if f.FromDate != nil && f.ToDate != nil && f.FromDate.After(*f.ToDate) {
		return nil, fmt.Errorf("%w: from_date posterior a to_date", domain.ErrInvalidInput)
	}
	if req.Account != "" {
		if _, f.Accounts, err = ledger.ExpandAccount(ctx, uc.accounts, req.Account); err != nil {
			return nil, err
		}
	}
	entries, err := uc.gl.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list gl entries: %w", err)
	}
	return entries, nil
}

func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return &t, nil
}
