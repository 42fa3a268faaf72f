// Package tercero resuelve el NIT del tercero (tabla "DIAN tercero") detrás de una
// línea contable, ya sea por la parte explícita de la línea o por su comprobante.
package tercero

import "github.com/va-app/va-dian/internal/domain/entity"

const (
	// UnknownParty etiqueta estable para partes que no se pudieron resolver. No se traduce.
	UnknownParty = "UNKNOWN_PARTY"

	// KindTercero doctype de la tabla de terceros.
	KindTercero = "DIAN tercero"

	// FieldDianTercero campo personalizado que enlaza un registro con su tercero.
	FieldDianTercero = "custom_dian_tercero"

	fieldNombreCompleto = "nombre_completo"
	fieldRazonSocial    = "razon_social"
)

// PartyLookup cómo obtener el NIT a partir de un tipo de parte.
// Direct indica que el ID de la parte ya es el NIT.
type PartyLookup struct {
	Kind   string
	Field  string
	Direct bool
}

// VoucherLookup cómo obtener la parte (o el NIT) a partir de un tipo de comprobante.
// Exactamente una de las tres formas aplica:
//   - NITField: el comprobante guarda el NIT directamente (Journal Entry).
//   - PartyTypeField + PartyField: el comprobante guarda tipo y parte (Payment Entry).
//   - PartyType + PartyField: tipo de parte fijo, el campo guarda la parte.
type VoucherLookup struct {
	NITField       string
	PartyTypeField string
	PartyType      entity.PartyType
	PartyField     string
}

// Tables tablas de despacho del resolver. Se construyen una vez y no se modifican.
type Tables struct {
	Parties  map[entity.PartyType]PartyLookup
	Vouchers map[entity.VoucherType]VoucherLookup
}

// DefaultTables tablas para ERPNext con el campo custom_dian_tercero en las partes y en Journal Entry.
func DefaultTables() Tables {
	return Tables{
		Parties: map[entity.PartyType]PartyLookup{
			entity.PartyTypeEmployee:    {Kind: "Employee", Field: FieldDianTercero},
			entity.PartyTypeShareholder: {Kind: "Shareholder", Field: FieldDianTercero},
			entity.PartyTypeCustomer:    {Kind: "Customer", Field: FieldDianTercero},
			entity.PartyTypeSupplier:    {Kind: "Supplier", Field: FieldDianTercero},
			entity.PartyTypeTercero:     {Direct: true},
		},
		Vouchers: map[entity.VoucherType]VoucherLookup{
			entity.VoucherJournalEntry:    {NITField: FieldDianTercero},
			entity.VoucherPaymentEntry:    {PartyTypeField: "party_type", PartyField: "party"},
			entity.VoucherPurchaseInvoice: {PartyType: entity.PartyTypeSupplier, PartyField: "supplier"},
			entity.VoucherPurchaseReceipt: {PartyType: entity.PartyTypeSupplier, PartyField: "supplier"},
			entity.VoucherStockEntry:      {PartyType: entity.PartyTypeSupplier, PartyField: "supplier"},
			entity.VoucherSalesInvoice:    {PartyType: entity.PartyTypeCustomer, PartyField: "customer"},
			entity.VoucherDeliveryNote:    {PartyType: entity.PartyTypeCustomer, PartyField: "customer"},
		},
	}
}
