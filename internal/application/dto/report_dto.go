package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/va-app/va-dian/internal/domain/ledger"
)

// LedgerReportRequest filtros de los reportes del libro mayor. Fechas en formato YYYY-MM-DD.
type LedgerReportRequest struct {
	Company          string `query:"company"`
	FromDate         string `query:"from_date"`
	ToDate           string `query:"to_date"`
	Account          string `query:"account"`
	GroupVoucherType bool   `query:"group_by_voucher_type"`
	GroupVoucherNo   bool   `query:"group_by_voucher_no"`
	IncludeCancelled bool   `query:"include_cancelled"`
}

// GLSummaryResponse filas del resumen por cuenta y tercero.
type GLSummaryResponse struct {
	Rows []ledger.SummaryRow `json:"rows"`
}

// BalanceRow línea del balance por cuenta y tercero.
type BalanceRow struct {
	Grouping      string          `json:"grouping"`
	PartySelected string          `json:"party_selected"`
	Tercero       string          `json:"tercero"`
	Name          string          `json:"name"`
	PostingDate   time.Time       `json:"posting_date"`
	Account       string          `json:"account"`
	PartyType     string          `json:"party_type,omitempty"`
	Party         string          `json:"party,omitempty"`
	VoucherType   string          `json:"voucher_type,omitempty"`
	VoucherNo     string          `json:"voucher_no,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// BalanceResponse detalle agrupado cuenta -> tercero.
type BalanceResponse struct {
	Rows []BalanceRow `json:"rows"`
}
