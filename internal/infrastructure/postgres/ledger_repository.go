package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

var (
	_ repository.GLEntryRepository = (*GLEntryRepo)(nil)
	_ repository.AccountRepository = (*AccountRepo)(nil)
)

// GLEntryRepo lectura de "tabGL Entry".
type GLEntryRepo struct {
	q Querier
}

// NewGLEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGLEntryRepository(q Querier) *GLEntryRepo {
	return &GLEntryRepo{q: q}
}

// List devuelve las líneas que cumplen el filtro, ordenadas por fecha, cuenta y creación.
func (r *GLEntryRepo) List(ctx context.Context, f repository.GLEntryFilter) ([]entity.GLEntry, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Company != "" {
		add("company = $%d", f.Company)
	}
	if f.FromDate != nil {
		add("posting_date >= $%d", *f.FromDate)
	}
	if f.ToDate != nil {
		add("posting_date <= $%d", *f.ToDate)
	}
	if len(f.Accounts) > 0 {
		add("account = ANY($%d)", f.Accounts)
	}
	if f.ExcludeCancelled {
		where = append(where, "COALESCE(is_cancelled, 0) = 0")
	}

	query := `
		SELECT name, posting_date, COALESCE(account, ''), COALESCE(party_type, ''), COALESCE(party, ''),
			COALESCE(voucher_type, ''), COALESCE(voucher_no, ''), COALESCE(voucher_subtype, ''),
			COALESCE(debit, 0), COALESCE(credit, 0), COALESCE(account_currency, ''),
			COALESCE(cost_center, ''), COALESCE(company, ''), COALESCE(is_cancelled, 0) = 1
		FROM "tabGL Entry"`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY posting_date, account, creation"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gl entries: %w", err)
	}
	defer rows.Close()
	var list []entity.GLEntry
	for rows.Next() {
		var e entity.GLEntry
		var partyType, voucherType string
		if err := rows.Scan(
			&e.Name, &e.PostingDate, &e.Account, &partyType, &e.Party.ID,
			&voucherType, &e.Voucher.No, &e.VoucherSubtype,
			&e.Debit, &e.Credit, &e.Currency, &e.CostCenter, &e.Company, &e.IsCancelled,
		); err != nil {
			return nil, fmt.Errorf("scan gl entry: %w", err)
		}
		e.Party.Type = entity.PartyType(partyType)
		e.Voucher.Type = entity.VoucherType(voucherType)
		list = append(list, e)
	}
	return list, rows.Err()
}

// AccountRepo lectura de "tabAccount".
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// GetByName obtiene una cuenta con su intervalo anidado.
func (r *AccountRepo) GetByName(ctx context.Context, name string) (*entity.Account, error) {
	query := `
		SELECT name, COALESCE(account_name, ''), COALESCE(is_group, 0) = 1, COALESCE(lft, 0), COALESCE(rgt, 0)
		FROM "tabAccount" WHERE name = $1`
	var a entity.Account
	err := r.q.QueryRow(ctx, query, name).Scan(&a.Name, &a.AccountName, &a.IsGroup, &a.Lft, &a.Rgt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// ListLeavesBetween cuentas hoja descendientes del intervalo (lft, rgt).
func (r *AccountRepo) ListLeavesBetween(ctx context.Context, lft, rgt int) ([]string, error) {
	query := `
		SELECT name FROM "tabAccount"
		WHERE lft > $1 AND rgt < $2 AND COALESCE(is_group, 0) = 0
		ORDER BY lft`
	rows, err := r.q.Query(ctx, query, lft, rgt)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
