package entity

import (
	"path"
	"time"
)

// Estados de procesamiento de un documento DIAN.
const (
	DIANDocumentStatusDraft     = "Draft"
	DIANDocumentStatusProcessed = "Processed"
	DIANDocumentStatusError     = "Error"
)

// Campos de adjunto de un documento DIAN.
const (
	AttachmentFieldXML            = "xml"
	AttachmentFieldRepresentation = "representation"
)

// DIANDocument documento electrónico recibido (tabla "DIAN document").
// XML y Representation son las URLs de los adjuntos (tabla File).
type DIANDocument struct {
	Name           string
	XML            string
	Representation string
	XMLDianTercero string
	XMLCufe        string
	XMLIssueDate   *time.Time
	XMLContent     string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// File adjunto del ERP (tabla "File").
type File struct {
	Name            string
	FileName        string
	FileURL         string
	IsPrivate       bool
	AttachedToType  string
	AttachedToName  string
	AttachedToField string
	FileSize        int64
	CreatedAt       time.Time
}

// Prefijos de file_url usados por el ERP.
const (
	PrivateFilesPrefix = "/private/files/"
	PublicFilesPrefix  = "/files/"
)

// FileURL construye el file_url de un adjunto.
func FileURL(fileName string, private bool) string {
	if private {
		return PrivateFilesPrefix + fileName
	}
	return PublicFilesPrefix + fileName
}

// RenamedFileURL reemplaza el nombre de archivo al final de un file_url.
func RenamedFileURL(fileURL, newFileName string) string {
	dir, _ := path.Split(fileURL)
	return dir + newFileName
}
