package dian

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

// maxStemLen longitud máxima (en caracteres) del nombre original conservado.
const maxStemLen = 80

// RenameAttachments renombra los adjuntos xml y representation del documento a
// "<AA-MM-DD> <NIT> <nombre original saneado><ext>". Un adjunto que ya tiene ese nombre no
// se toca; si el archivo no existe o el destino ya está ocupado se omite y se registra.
// Si un renombrado falla, los que ya se movieron quedan registrados en File y en el documento.
func (uc *DocumentUseCase) RenameAttachments(ctx context.Context, name string) (*dto.RenameAttachmentsResponse, error) {
	doc, err := uc.getDocument(ctx, name)
	if err != nil {
		return nil, err
	}
	if doc.XMLDianTercero == "" || doc.XMLIssueDate == nil {
		return nil, fmt.Errorf("%w: no es posible renombrar los archivos de %s: falta tercero y/o fecha de emisión",
			domain.ErrInvalidInput, name)
	}
	prefix := doc.XMLIssueDate.Format("06-01-02") + " " + doc.XMLDianTercero

	out := &dto.RenameAttachmentsResponse{Document: doc.Name, Renamed: []dto.RenamedAttachment{}}
	var plans []renamePlan
	for _, field := range []string{entity.AttachmentFieldXML, entity.AttachmentFieldRepresentation} {
		url := attachmentURL(doc, field)
		if url == "" {
			continue
		}
		plan, err := uc.planRename(ctx, doc.Name, field, url, prefix)
		if err != nil {
			return nil, err
		}
		switch {
		case plan == nil:
			out.Skipped = append(out.Skipped, url)
		case plan.to != url:
			plans = append(plans, *plan)
		}
	}

	var moved []renamePlan
	var moveErr error
	for _, p := range plans {
		if err := uc.blobs.Rename(ctx, p.from, p.to); err != nil {
			moveErr = fmt.Errorf("renombrar %s: %w", p.from, err)
			break
		}
		moved = append(moved, p)
	}
	if len(moved) > 0 {
		if err := uc.persistRenames(ctx, doc, moved); err != nil {
			uc.revertRenames(ctx, doc.Name, moved)
			return nil, err
		}
	}
	if moveErr != nil {
		return nil, moveErr
	}
	for _, p := range moved {
		out.Renamed = append(out.Renamed, dto.RenamedAttachment{Field: p.field, From: p.from, To: p.to})
	}
	return out, nil
}

// renamePlan renombrado pendiente de un adjunto.
type renamePlan struct {
	field   string
	file    *entity.File
	from    string
	to      string
	newName string
}

// planRename calcula el destino sin mover nada. Devuelve nil si el adjunto se omite y
// un plan con to == from si ya tiene el nombre final.
func (uc *DocumentUseCase) planRename(ctx context.Context, docName, field, url, prefix string) (*renamePlan, error) {
	f, err := uc.files.GetByURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", url, err)
	}
	if f == nil {
		uc.log.Warn().Str("document", docName).Str("file_url", url).Msg("adjunto sin registro File")
		return nil, nil
	}
	exists, err := uc.blobs.Exists(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("exists %s: %w", url, err)
	}
	if !exists {
		uc.log.Error().Str("document", docName).Str("file_url", url).Msg("archivo no encontrado en el almacenamiento")
		return nil, nil
	}

	newName := AttachmentFileName(prefix, f.FileName)
	if f.FileName == newName {
		return &renamePlan{field: field, file: f, from: url, to: url, newName: newName}, nil
	}
	newURL := entity.RenamedFileURL(url, newName)
	taken, err := uc.blobs.Exists(ctx, newURL)
	if err != nil {
		return nil, fmt.Errorf("exists %s: %w", newURL, err)
	}
	if taken {
		uc.log.Error().Str("document", docName).Str("target", newURL).Msg("el archivo destino ya existe")
		return nil, nil
	}
	return &renamePlan{field: field, file: f, from: url, to: newURL, newName: newName}, nil
}

// persistRenames actualiza las filas File y las URLs del documento en una transacción.
func (uc *DocumentUseCase) persistRenames(ctx context.Context, doc *entity.DIANDocument, moved []renamePlan) error {
	updated := *doc
	for _, p := range moved {
		setAttachmentURL(&updated, p.field, p.to)
	}
	updated.UpdatedAt = uc.now()
	return uc.tx.RunDocuments(ctx, func(docs repository.DIANDocumentRepository, files repository.FileRepository) error {
		for _, p := range moved {
			f := *p.file
			f.FileName = p.newName
			f.FileURL = p.to
			if err := files.Update(ctx, &f); err != nil {
				return fmt.Errorf("actualizar file %s: %w", f.Name, err)
			}
		}
		if err := docs.Update(ctx, &updated); err != nil {
			return fmt.Errorf("actualizar documento %s: %w", doc.Name, err)
		}
		return nil
	})
}

// revertRenames devuelve los archivos a su nombre original cuando no se pudo registrar el cambio.
func (uc *DocumentUseCase) revertRenames(ctx context.Context, docName string, moved []renamePlan) {
	for _, p := range moved {
		if err := uc.blobs.Rename(ctx, p.to, p.from); err != nil {
			uc.log.Error().Err(err).Str("document", docName).Str("file_url", p.to).
				Msg("no se pudo revertir el renombrado del adjunto")
		}
	}
}

// AttachmentFileName arma el nombre "<prefijo> <nombre saneado y truncado><ext>".
func AttachmentFileName(prefix, original string) string {
	ext := path.Ext(original)
	stem := []rune(sanitizeFileName(strings.TrimSuffix(original, ext)))
	if len(stem) > maxStemLen {
		stem = stem[:maxStemLen]
	}
	return prefix + " " + string(stem) + ext
}

// sanitizeFileName conserva letras, dígitos, espacio, punto, guion bajo y guion.
func sanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" ._-", r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func attachmentURL(doc *entity.DIANDocument, field string) string {
	if field == entity.AttachmentFieldXML {
		return doc.XML
	}
	return doc.Representation
}

func setAttachmentURL(doc *entity.DIANDocument, field, url string) {
	if field == entity.AttachmentFieldXML {
		doc.XML = url
		return
	}
	doc.Representation = url
}
