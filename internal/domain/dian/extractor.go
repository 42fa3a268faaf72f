// Package dian extrae la información de los documentos electrónicos recibidos
// de la DIAN: un AttachedDocument que transporta la factura como texto (CDATA).
package dian

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// Rutas del AttachedDocument (árbol externo).
var (
	pathDocumentType          = compilePath("cbc:DocumentType")
	pathParentDocumentID      = compilePath("cbc:ParentDocumentID")
	pathIssueDate             = compilePath("cbc:IssueDate")
	pathIssueTime             = compilePath("cbc:IssueTime")
	pathSenderName            = compilePath("cac:SenderParty/cac:PartyTaxScheme/cbc:RegistrationName")
	pathSenderID              = compilePath("cac:SenderParty/cac:PartyTaxScheme/cbc:CompanyID")
	pathReceiverName          = compilePath("cac:ReceiverParty/cac:PartyTaxScheme/cbc:RegistrationName")
	pathReceiverID            = compilePath("cac:ReceiverParty/cac:PartyTaxScheme/cbc:CompanyID")
	pathEmbeddedPayload       = compilePath("cac:Attachment/cac:ExternalReference/cbc:Description")
	pathParentLineReferenceID = compilePath("cac:ParentDocumentLineReference/cac:DocumentReference/cbc:UUID")
)

// Rutas de la factura embebida.
var (
	pathUUID           = compilePath(".//cbc:UUID")
	pathSupplierAddr   = compilePath("cac:AccountingSupplierParty/cac:Party/cac:PhysicalLocation/cac:Address")
	pathAddrLine       = compilePath("cac:AddressLine/cbc:Line")
	pathAddrCity       = compilePath("cbc:CityName")
	pathAddrDepartment = compilePath("cbc:CountrySubentity")
	pathAddrPostal     = compilePath("cbc:PostalZone")
	pathAddrCountry    = compilePath("cac:Country/cbc:Name")
	pathSupplierEmail  = compilePath("cac:AccountingSupplierParty/cac:Party/cac:Contact/cbc:ElectronicMail")
	pathSupplierPhone  = compilePath("cac:AccountingSupplierParty/cac:Party/cac:Contact/cbc:Telephone")
	pathInvoiceLine    = compilePath(".//cac:InvoiceLine")
	pathLineQuantity   = compilePath(".//cbc:InvoicedQuantity")
	pathLinePrice      = compilePath(".//cac:Price/cbc:PriceAmount")
	pathLineExtension  = compilePath(".//cbc:LineExtensionAmount")
	pathLineTaxable    = compilePath(".//cbc:TaxableAmount")
	pathLineTax        = compilePath(".//cbc:TaxAmount")
	pathLineDesc       = compilePath(".//cac:Item/cbc:Description")
)

// Extractor convierte bytes de un AttachedDocument en un entity.ExtractedDocument.
// No hace I/O ni guarda estado entre llamadas; es seguro para uso concurrente.
type Extractor struct {
	ns Namespaces
}

// NewExtractor construye el extractor. Con ns nil usa DefaultNamespaces.
func NewExtractor(ns Namespaces) *Extractor {
	if ns == nil {
		ns = DefaultNamespaces()
	}
	return &Extractor{ns: ns}
}

// Extract lee el sobre, la factura embebida y sus líneas.
//
// Errores fatales: ErrMalformedXML, ErrMissingEmbeddedPayload, ErrUnsupportedDocumentType.
// Si la factura embebida no es XML válido el documento se devuelve solo con los datos del
// sobre y PayloadParseError diligenciado. Un UUID ausente no es error aquí.
func (x *Extractor) Extract(data []byte) (*entity.ExtractedDocument, error) {
	root, err := parseXML(func(doc *etree.Document) error { return doc.ReadFromBytes(data) })
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	typeLabel := x.ns.findText(root, pathDocumentType)
	out := &entity.ExtractedDocument{
		DocumentType:      entity.DocumentTypeFromLabel(typeLabel),
		DocumentID:        x.ns.findText(root, pathParentDocumentID),
		IssueDate:         x.ns.findText(root, pathIssueDate),
		IssueTime:         x.ns.findText(root, pathIssueTime),
		SenderPartyName:   x.ns.findText(root, pathSenderName),
		SenderPartyID:     x.ns.findText(root, pathSenderID),
		ReceiverPartyName: x.ns.findText(root, pathReceiverName),
		ReceiverPartyID:   x.ns.findText(root, pathReceiverID),
	}

	payload := x.ns.findText(root, pathEmbeddedPayload)
	if payload == "" {
		return nil, ErrMissingEmbeddedPayload
	}

	invoice, err := parseXML(func(doc *etree.Document) error {
		return doc.ReadFromString(stripDeclaration(payload))
	})
	if err != nil {
		out.PayloadParseError = fmt.Errorf("%w: %v", ErrEmbeddedPayloadParse, err).Error()
	} else {
		if err := x.readInvoice(invoice, out, typeLabel); err != nil {
			return nil, err
		}
	}

	if out.UUID == "" {
		out.UUID = x.ns.findText(root, pathParentLineReferenceID)
	}
	return out, nil
}

func (x *Extractor) readInvoice(invoice *etree.Element, out *entity.ExtractedDocument, typeLabel string) error {
	out.UUID = x.ns.findText(invoice, pathUUID)

	if addr := x.ns.find(invoice, pathSupplierAddr); addr != nil {
		out.SenderAddress = &entity.Address{
			Line:       x.ns.findText(addr, pathAddrLine),
			City:       x.ns.findText(addr, pathAddrCity),
			Department: x.ns.findText(addr, pathAddrDepartment),
			PostalZone: x.ns.findText(addr, pathAddrPostal),
			Country:    x.ns.findText(addr, pathAddrCountry),
		}
	}
	out.SenderEmail = x.ns.findText(invoice, pathSupplierEmail)
	out.SenderTelephone = x.ns.findText(invoice, pathSupplierPhone)

	if !out.DocumentType.IsKnown() {
		return fmt.Errorf("%w: %q", ErrUnsupportedDocumentType, typeLabel)
	}
	for _, line := range x.ns.findAll(invoice, pathInvoiceLine) {
		out.Items = append(out.Items, entity.LineItem{
			Quantity:        x.ns.findText(line, pathLineQuantity),
			Price:           x.ns.findText(line, pathLinePrice),
			TaxableAmount:   x.ns.findText(line, pathLineTaxable),
			TaxAmount:       x.ns.findText(line, pathLineTax),
			ExtensionAmount: x.ns.findText(line, pathLineExtension),
			Description:     x.ns.findText(line, pathLineDesc),
		})
	}
	return nil
}

func parseXML(read func(*etree.Document) error) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	doc.ReadSettings.ValidateInput = true
	if err := read(doc); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("documento sin elemento raíz")
	}
	return root, nil
}

// stripDeclaration quita la declaración <?xml ...?> inicial del texto embebido.
// La codificación declarada ya no aplica: el texto llegó decodificado dentro del sobre.
func stripDeclaration(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "\ufeff")
	if strings.HasPrefix(s, "<?xml") {
		if i := strings.Index(s, "?>"); i >= 0 {
			return s[i+2:]
		}
	}
	return s
}

// charsetReader decodifica sobres declarados en ISO-8859-1, windows-1252 u otra codificación IANA.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("codificación %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("codificación %q no soportada", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
