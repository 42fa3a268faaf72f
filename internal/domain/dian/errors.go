package dian

import "errors"

// Errores de extracción de documentos DIAN.
var (
	// ErrMalformedXML el AttachedDocument no es XML bien formado.
	ErrMalformedXML = errors.New("dian: XML mal formado")
	// ErrMissingEmbeddedPayload el AttachedDocument no trae la factura embebida.
	ErrMissingEmbeddedPayload = errors.New("dian: no se encontró la factura embebida en el AttachedDocument")
	// ErrEmbeddedPayloadParse la factura embebida no es XML válido. No es fatal para Extract.
	ErrEmbeddedPayloadParse = errors.New("dian: la factura embebida no es XML válido")
	// ErrUnsupportedDocumentType el contenedor no tiene regla de extracción de ítems.
	ErrUnsupportedDocumentType = errors.New("dian: tipo de documento no soportado")
	// ErrMissingUUID ni la ruta principal ni la alterna entregan UUID. Lo exige quien persiste.
	ErrMissingUUID = errors.New("dian: el XML no contiene un UUID válido")
)
