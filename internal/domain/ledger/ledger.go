// Package ledger agrupa líneas del libro mayor por cuenta y tercero.
package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// UnknownAccount cuenta usada cuando la línea no trae cuenta.
const UnknownAccount = "UNKNOWN_ACCOUNT"

// PartyResolver resuelve el tercero de una línea. Lo implementa *tercero.Resolver.
type PartyResolver interface {
	ResolvePartyID(ctx context.Context, line entity.PartyReference, voucher entity.VoucherReference) (string, error)
	Label(ctx context.Context, nit string) (string, error)
}

// GroupBy partes opcionales de la llave de agrupación, además de cuenta y tercero.
type GroupBy struct {
	VoucherType bool
	VoucherNo   bool
}

// SummaryRow totales de un grupo.
type SummaryRow struct {
	Account     string             `json:"account"`
	Tercero     string             `json:"tercero"`
	Party       string             `json:"party"`
	VoucherType entity.VoucherType `json:"voucher_type,omitempty"`
	VoucherNo   string             `json:"voucher_no,omitempty"`
	Debit       decimal.Decimal    `json:"total_debit"`
	Credit      decimal.Decimal    `json:"total_credit"`
	Total       decimal.Decimal    `json:"total"`
}

type summaryKey struct {
	account     string
	party       string
	voucherType entity.VoucherType
	voucherNo   string
}

// Summarize suma débitos, créditos y débito − crédito por (cuenta, etiqueta del tercero[, tipo de
// comprobante][, número]). Las filas salen ordenadas por cuenta y etiqueta; los empates conservan
// el orden de aparición.
func Summarize(ctx context.Context, entries []entity.GLEntry, r PartyResolver, by GroupBy) ([]SummaryRow, error) {
	index := make(map[summaryKey]int)
	var rows []SummaryRow
	for _, e := range entries {
		nit, label, err := resolve(ctx, r, e)
		if err != nil {
			return nil, err
		}
		key := summaryKey{account: accountOf(e), party: label}
		if by.VoucherType {
			key.voucherType = e.Voucher.Type
		}
		if by.VoucherNo {
			key.voucherNo = e.Voucher.No
		}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, SummaryRow{
				Account:     key.account,
				Tercero:     nit,
				Party:       label,
				VoucherType: key.voucherType,
				VoucherNo:   key.voucherNo,
				Debit:       decimal.Zero,
				Credit:      decimal.Zero,
				Total:       decimal.Zero,
			})
		}
		rows[i].Debit = rows[i].Debit.Add(e.Debit)
		rows[i].Credit = rows[i].Credit.Add(e.Credit)
		rows[i].Total = rows[i].Total.Add(e.Debit.Sub(e.Credit))
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Account != rows[b].Account {
			return rows[a].Account < rows[b].Account
		}
		return rows[a].Party < rows[b].Party
	})
	return rows, nil
}

// DetailRow línea del libro mayor anotada con su grupo.
type DetailRow struct {
	Grouping      string         `json:"grouping"`
	PartySelected string         `json:"party_selected"`
	Tercero       string         `json:"tercero"`
	Entry         entity.GLEntry `json:"-"`
}

// GroupEntries anota cada línea con grouping = "<cuenta>: <etiqueta>" y las devuelve agrupadas
// cuenta -> tercero, en el orden en que cada cuenta y cada tercero aparecen por primera vez.
func GroupEntries(ctx context.Context, entries []entity.GLEntry, r PartyResolver) ([]DetailRow, error) {
	type partyGroup struct {
		label string
		rows  []DetailRow
	}
	type accountGroup struct {
		parties []*partyGroup
		byLabel map[string]*partyGroup
	}

	var accounts []string
	groups := make(map[string]*accountGroup)
	for _, e := range entries {
		nit, label, err := resolve(ctx, r, e)
		if err != nil {
			return nil, err
		}
		account := accountOf(e)
		ag, ok := groups[account]
		if !ok {
			ag = &accountGroup{byLabel: make(map[string]*partyGroup)}
			groups[account] = ag
			accounts = append(accounts, account)
		}
		pg, ok := ag.byLabel[label]
		if !ok {
			pg = &partyGroup{label: label}
			ag.byLabel[label] = pg
			ag.parties = append(ag.parties, pg)
		}
		pg.rows = append(pg.rows, DetailRow{
			Grouping:      account + ": " + label,
			PartySelected: label,
			Tercero:       nit,
			Entry:         e,
		})
	}

	out := make([]DetailRow, 0, len(entries))
	for _, account := range accounts {
		for _, pg := range groups[account].parties {
			out = append(out, pg.rows...)
		}
	}
	return out, nil
}

func resolve(ctx context.Context, r PartyResolver, e entity.GLEntry) (nit, label string, err error) {
	nit, err = r.ResolvePartyID(ctx, e.Party, e.Voucher)
	if err != nil {
		return "", "", err
	}
	label, err = r.Label(ctx, nit)
	if err != nil {
		return "", "", err
	}
	return nit, label, nil
}

func accountOf(e entity.GLEntry) string {
	if e.Account == "" {
		return UnknownAccount
	}
	return e.Account
}
