package dto

import (
	"time"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// DIANDocumentResponse documento DIAN tras ingestión o sincronización.
type DIANDocumentResponse struct {
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	XML            string     `json:"xml,omitempty"`
	Representation string     `json:"representation,omitempty"`
	Tercero        string     `json:"xml_dian_tercero,omitempty"`
	Cufe           string     `json:"xml_cufe,omitempty"`
	IssueDate      *time.Time `json:"xml_issue_date,omitempty"`
	Content        string     `json:"xml_content,omitempty"`
}

// NewDIANDocumentResponse arma la respuesta desde la entidad.
func NewDIANDocumentResponse(d *entity.DIANDocument) *DIANDocumentResponse {
	return &DIANDocumentResponse{
		Name:           d.Name,
		Status:         d.Status,
		XML:            d.XML,
		Representation: d.Representation,
		Tercero:        d.XMLDianTercero,
		Cufe:           d.XMLCufe,
		IssueDate:      d.XMLIssueDate,
		Content:        d.XMLContent,
	}
}

// RenamedAttachment adjunto renombrado.
type RenamedAttachment struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// RenameAttachmentsResponse resultado de renombrar los adjuntos de un documento.
type RenameAttachmentsResponse struct {
	Document string              `json:"document"`
	Renamed  []RenamedAttachment `json:"renamed"`
	Skipped  []string            `json:"skipped,omitempty"`
}

// UpsertTerceroResponse resultado de crear o actualizar un tercero.
type UpsertTerceroResponse struct {
	NIT     string `json:"nit"`
	Created bool   `json:"created"`
}
