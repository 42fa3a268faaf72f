package dian

import (
	"strings"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// FormatContent representa el documento extraído como texto clave: valor indentado,
// pensado para el campo xml_content del documento DIAN (fácil de seleccionar y copiar).
// Los campos ausentes se escriben vacíos.
func FormatContent(d *entity.ExtractedDocument) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	line := func(indent int, key, value string) {
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	line(0, "document_type", string(d.DocumentType))
	line(0, "document_id", d.DocumentID)
	line(0, "uuid", d.UUID)
	line(0, "issue_date", d.IssueDate)
	line(0, "issue_time", d.IssueTime)
	line(0, "sender_party_name", d.SenderPartyName)
	line(0, "sender_party_id", d.SenderPartyID)
	if d.SenderAddress == nil {
		line(0, "sender_address", "")
	} else {
		b.WriteString("sender_address: \n")
		line(4, "direccion", d.SenderAddress.Line)
		line(4, "ciudad", d.SenderAddress.City)
		line(4, "departamento", d.SenderAddress.Department)
		line(4, "codigo_postal", d.SenderAddress.PostalZone)
		line(4, "pais", d.SenderAddress.Country)
	}
	line(0, "sender_email", d.SenderEmail)
	line(0, "sender_telephone", d.SenderTelephone)
	line(0, "receiver_party_name", d.ReceiverPartyName)
	line(0, "receiver_party_id", d.ReceiverPartyID)

	items := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, "{quantity: "+it.Quantity+
			", price: "+it.Price+
			", taxable_amount: "+it.TaxableAmount+
			", tax_amount: "+it.TaxAmount+
			", extension_amount: "+it.ExtensionAmount+
			", description: "+it.Description+"}")
	}
	line(0, "items", "["+strings.Join(items, ",")+"]")
	if d.PayloadParseError != "" {
		line(0, "payload_parse_error", d.PayloadParseError)
	}
	return b.String()
}
