// Package dian contiene catálogos y utilidades alineados al Anexo Técnico
// de Factura Electrónica de Venta DIAN (Colombia) v1.9, del lado receptor:
// espacios de nombres UBL, etiquetas de contenedor y tipos de retención.
package dian

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// Espacios de nombres UBL 2.1 usados por el AttachedDocument y la Invoice embebida.
// =============================================================================

const (
	NamespaceCAC = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceCBC = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// =============================================================================
// Etiquetas del contenedor (cbc:DocumentType del AttachedDocument).
// Los proveedores tecnológicos emiten la etiqueta con y sin tilde.
// =============================================================================

const (
	ContainerLabelFacturaElectronica = "Contenedor de Factura Electrónica"
)

// FoldLabel normaliza una etiqueta para compararla sin importar tildes, mayúsculas ni espacios extremos.
// "Contenedor de Factura Electrónica" y "contenedor de factura electronica" producen el mismo valor.
func FoldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

// IsFacturaElectronicaLabel indica si la etiqueta del contenedor corresponde a una factura electrónica.
func IsFacturaElectronicaLabel(s string) bool {
	return s != "" && FoldLabel(s) == FoldLabel(ContainerLabelFacturaElectronica)
}

// =============================================================================
// Tipos de certificado de retención (art. 381 E.T.)
// =============================================================================

const (
	RetencionFuente = "RET_FUENTE" // Retención en la fuente a título de renta
	RetencionIVA    = "RET_IVA"    // Retención sobre el IVA
	RetencionICA    = "RET_ICA"    // Retención de industria y comercio (municipal)
)

// ValidCertificateTypes tipos de certificado de retención soportados.
var ValidCertificateTypes = map[string]bool{
	RetencionFuente: true,
	RetencionIVA:    true,
	RetencionICA:    true,
}

// =============================================================================
// Tabla 3 - Tipos de identificación (Anexo 1.9 - 13.2.1)
// =============================================================================

// IdentificationTypeNIT NIT, requiere dígito de verificación. Es el tipo de todo tercero creado desde un XML.
const IdentificationTypeNIT = "31"
