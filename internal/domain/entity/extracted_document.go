package entity

import "github.com/va-app/va-dian/pkg/dian"

// DocumentType tipo de documento electrónico reconocido en el contenedor DIAN.
type DocumentType string

const (
	DocumentTypeIndeterminado      DocumentType = "Indeterminado"
	DocumentTypeFacturaElectronica DocumentType = "Factura electrónica"
)

// DocumentTypeFromLabel clasifica la etiqueta cbc:DocumentType del AttachedDocument.
// Cualquier etiqueta no reconocida es Indeterminado.
func DocumentTypeFromLabel(label string) DocumentType {
	if dian.IsFacturaElectronicaLabel(label) {
		return DocumentTypeFacturaElectronica
	}
	return DocumentTypeIndeterminado
}

// IsKnown indica si el tipo tiene regla de extracción de ítems.
func (t DocumentType) IsKnown() bool {
	return t == DocumentTypeFacturaElectronica
}

// Address dirección del emisor tomada de la factura embebida.
type Address struct {
	Line       string `json:"direccion,omitempty" yaml:"direccion,omitempty"`
	City       string `json:"ciudad,omitempty" yaml:"ciudad,omitempty"`
	Department string `json:"departamento,omitempty" yaml:"departamento,omitempty"`
	PostalZone string `json:"codigo_postal,omitempty" yaml:"codigo_postal,omitempty"`
	Country    string `json:"pais,omitempty" yaml:"pais,omitempty"`
}

// LineItem línea de factura. Los montos se conservan como texto tal como vienen en el XML.
type LineItem struct {
	Quantity        string `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Price           string `json:"price,omitempty" yaml:"price,omitempty"`
	TaxableAmount   string `json:"taxable_amount,omitempty" yaml:"taxable_amount,omitempty"`
	TaxAmount       string `json:"tax_amount,omitempty" yaml:"tax_amount,omitempty"`
	ExtensionAmount string `json:"extension_amount,omitempty" yaml:"extension_amount,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ExtractedDocument información extraída de un AttachedDocument DIAN y de la factura que transporta.
// Un campo ausente queda en su valor cero; Items es nil cuando el documento no trae líneas.
type ExtractedDocument struct {
	DocumentType      DocumentType `json:"document_type" yaml:"document_type"`
	DocumentID        string       `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	UUID              string       `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	IssueDate         string       `json:"issue_date,omitempty" yaml:"issue_date,omitempty"`
	IssueTime         string       `json:"issue_time,omitempty" yaml:"issue_time,omitempty"`
	SenderPartyName   string       `json:"sender_party_name,omitempty" yaml:"sender_party_name,omitempty"`
	SenderPartyID     string       `json:"sender_party_id,omitempty" yaml:"sender_party_id,omitempty"`
	SenderAddress     *Address     `json:"sender_address,omitempty" yaml:"sender_address,omitempty"`
	SenderEmail       string       `json:"sender_email,omitempty" yaml:"sender_email,omitempty"`
	SenderTelephone   string       `json:"sender_telephone,omitempty" yaml:"sender_telephone,omitempty"`
	ReceiverPartyName string       `json:"receiver_party_name,omitempty" yaml:"receiver_party_name,omitempty"`
	ReceiverPartyID   string       `json:"receiver_party_id,omitempty" yaml:"receiver_party_id,omitempty"`
	Items             []LineItem   `json:"items,omitempty" yaml:"items,omitempty"`

	// PayloadParseError describe el fallo al leer la factura embebida; vacío si se leyó bien.
	PayloadParseError string `json:"payload_parse_error,omitempty" yaml:"payload_parse_error,omitempty"`
}

// HasPayload indica si la factura embebida pudo leerse.
func (d *ExtractedDocument) HasPayload() bool {
	return d.PayloadParseError == ""
}
