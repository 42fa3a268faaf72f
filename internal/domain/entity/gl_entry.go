package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GLEntry línea del libro mayor (tabla "GL Entry" del ERP, solo lectura).
type GLEntry struct {
	Name           string
	PostingDate    time.Time
	Account        string
	Party          PartyReference
	Voucher        VoucherReference
	VoucherSubtype string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Currency       string
	CostCenter     string
	Company        string
	IsCancelled    bool
}

// Account cuenta del plan contable; los grupos se expanden por el intervalo anidado lft/rgt.
type Account struct {
	Name        string
	AccountName string
	IsGroup     bool
	Lft         int
	Rgt         int
}
