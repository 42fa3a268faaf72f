package dto

import "github.com/va-app/va-dian/internal/domain/entity"

// ResolveTerceroRequest línea contable a resolver (query string).
type ResolveTerceroRequest struct {
	PartyType   string `query:"party_type"`
	Party       string `query:"party"`
	VoucherType string `query:"voucher_type"`
	VoucherNo   string `query:"voucher_no"`
}

// ResolveTerceroResponse NIT resuelto y su etiqueta.
type ResolveTerceroResponse struct {
	Tercero string `json:"tercero"`
	Label   string `json:"label"`
}

// TerceroListResponse página de terceros.
type TerceroListResponse struct {
	Items []*entity.Tercero `json:"items"`
	Page  PageResponse      `json:"page"`
}
