package entity

// PartyType tipo de parte contable que puede apuntar a un tercero.
type PartyType string

const (
	PartyTypeEmployee    PartyType = "Employee"
	PartyTypeShareholder PartyType = "Shareholder"
	PartyTypeCustomer    PartyType = "Customer"
	PartyTypeSupplier    PartyType = "Supplier"

	// PartyTypeTercero marca que el ID ya es el NIT del tercero (sin indirección).
	PartyTypeTercero PartyType = "DIAN tercero"
)

// VoucherType tipo de comprobante que origina líneas contables.
type VoucherType string

const (
	VoucherJournalEntry    VoucherType = "Journal Entry"
	VoucherPaymentEntry    VoucherType = "Payment Entry"
	VoucherPurchaseInvoice VoucherType = "Purchase Invoice"
	VoucherPurchaseReceipt VoucherType = "Purchase Receipt"
	VoucherSalesInvoice    VoucherType = "Sales Invoice"
	VoucherDeliveryNote    VoucherType = "Delivery Note"
	VoucherStockEntry      VoucherType = "Stock Entry"
)

// PartyReference par (tipo, id) tal como aparece en una línea contable o en un comprobante.
type PartyReference struct {
	Type PartyType `json:"party_type,omitempty"`
	ID   string    `json:"party,omitempty"`
}

// IsExplicit indica si ambos campos están diligenciados.
func (p PartyReference) IsExplicit() bool {
	return p.Type != "" && p.ID != ""
}

// VoucherReference comprobante referenciado por una línea contable.
type VoucherReference struct {
	Type VoucherType `json:"voucher_type,omitempty"`
	No   string      `json:"voucher_no,omitempty"`
}

// IsEmpty indica si la referencia no identifica ningún comprobante.
func (v VoucherReference) IsEmpty() bool {
	return v.Type == "" || v.No == ""
}
