package dian

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
	pkgdian "github.com/va-app/va-dian/pkg/dian"
)

// maxEntrySize límite por archivo dentro del ZIP (50 MiB).
const maxEntrySize = 50 << 20

// zipEntry archivo extraído del ZIP.
type zipEntry struct {
	name string
	data []byte
}

// IngestZip recibe el ZIP que entrega la DIAN (XML AttachedDocument + PDF), crea el documento,
// guarda ambos adjuntos como privados, lo sincroniza desde el XML, renombra los adjuntos y lo
// deja en estado Processed. Si algo falla después de crearlo, el documento queda en Error.
func (uc *DocumentUseCase) IngestZip(ctx context.Context, fileName string, data []byte) (*dto.DIANDocumentResponse, error) {
	xmlEntry, pdfEntry, err := findXMLAndPDF(data)
	if err != nil {
		return nil, fmt.Errorf("zip %s: %w", fileName, err)
	}

	// Un XML inválido o un CUFE repetido se rechazan antes de crear nada.
	ext, err := uc.extractor.Extract(xmlEntry.data)
	if err != nil {
		return nil, fmt.Errorf("zip %s: %w", fileName, err)
	}
	if ext.UUID != "" {
		if err := uc.ensureCufeFree(ctx, pkgdian.NormalizeCUFE(ext.UUID), ""); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	doc := &entity.DIANDocument{
		Name:      uuid.New().String(),
		Status:    entity.DIANDocumentStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	xmlFile, err := uc.storeAttachment(ctx, doc.Name, entity.AttachmentFieldXML, xmlEntry)
	if err != nil {
		return nil, err
	}
	pdfFile, err := uc.storeAttachment(ctx, doc.Name, entity.AttachmentFieldRepresentation, pdfEntry)
	if err != nil {
		return nil, err
	}
	doc.XML = xmlFile.FileURL
	doc.Representation = pdfFile.FileURL

	err = uc.tx.RunDocuments(ctx, func(docs repository.DIANDocumentRepository, files repository.FileRepository) error {
		if err := docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("crear documento: %w", err)
		}
		if err := files.Create(ctx, xmlFile); err != nil {
			return fmt.Errorf("adjuntar xml: %w", err)
		}
		if err := files.Create(ctx, pdfFile); err != nil {
			return fmt.Errorf("adjuntar pdf: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("zip", fileName).Strs("files", []string{xmlFile.FileURL, pdfFile.FileURL}).
			Msg("no se pudo registrar el documento; los adjuntos quedaron sin referencia")
		return nil, err
	}

	name := doc.Name
	markError := func(cause error) error {
		if err := uc.docs.SetStatus(ctx, name, entity.DIANDocumentStatusError); err != nil {
			uc.log.Error().Err(err).Str("document", name).Msg("no se pudo marcar el documento en error")
		}
		ev := uc.log.Error()
		if isExtractionError(cause) {
			ev = uc.log.Warn()
		}
		ev.Err(cause).Str("document", name).Str("zip", fileName).Msg("ingestión DIAN fallida")
		return cause
	}

	synced, err := uc.SyncFromXML(ctx, name)
	if err != nil {
		return nil, markError(err)
	}
	name = synced.Name

	if _, err := uc.RenameAttachments(ctx, name); err != nil {
		return nil, markError(err)
	}
	if err := uc.docs.SetStatus(ctx, name, entity.DIANDocumentStatusProcessed); err != nil {
		return nil, markError(fmt.Errorf("marcar procesado: %w", err))
	}

	final, err := uc.getDocument(ctx, name)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document", name).Str("zip", fileName).Msg("documento DIAN ingresado")
	return dto.NewDIANDocumentResponse(final), nil
}

// storeAttachment escribe el archivo como privado y devuelve la fila File a registrar.
// Si el nombre ya está ocupado se le agrega un sufijo corto.
func (uc *DocumentUseCase) storeAttachment(ctx context.Context, docName, field string, e zipEntry) (*entity.File, error) {
	fileName := e.name
	url := entity.FileURL(fileName, true)
	exists, err := uc.blobs.Exists(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("exists %s: %w", url, err)
	}
	if exists {
		ext := path.Ext(fileName)
		fileName = strings.TrimSuffix(fileName, ext) + "-" + uuid.New().String()[:8] + ext
		url = entity.FileURL(fileName, true)
	}
	if err := uc.blobs.Write(ctx, url, e.data); err != nil {
		return nil, fmt.Errorf("guardar %s: %w", url, err)
	}
	return &entity.File{
		Name:            uuid.New().String(),
		FileName:        fileName,
		FileURL:         url,
		IsPrivate:       true,
		AttachedToType:  doctypeDIANDocument,
		AttachedToName:  docName,
		AttachedToField: field,
		FileSize:        int64(len(e.data)),
		CreatedAt:       uc.now(),
	}, nil
}

// findXMLAndPDF devuelve el primer .xml y el primer .pdf del ZIP (en el orden del archivo).
func findXMLAndPDF(data []byte) (xmlEntry, pdfEntry zipEntry, err error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return zipEntry{}, zipEntry{}, fmt.Errorf("%w: no es un ZIP válido: %v", domain.ErrInvalidInput, err)
	}
	var xmlFile, pdfFile *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		lower := strings.ToLower(f.Name)
		switch {
		case strings.HasSuffix(lower, ".xml") && xmlFile == nil:
			xmlFile = f
		case strings.HasSuffix(lower, ".pdf") && pdfFile == nil:
			pdfFile = f
		}
	}
	if xmlFile == nil {
		return zipEntry{}, zipEntry{}, fmt.Errorf("%w: el ZIP no contiene un archivo XML", domain.ErrInvalidInput)
	}
	if pdfFile == nil {
		return zipEntry{}, zipEntry{}, fmt.Errorf("%w: el ZIP no contiene un archivo PDF", domain.ErrInvalidInput)
	}
	if xmlEntry, err = readZipFile(xmlFile); err != nil {
		return zipEntry{}, zipEntry{}, err
	}
	if pdfEntry, err = readZipFile(pdfFile); err != nil {
		return zipEntry{}, zipEntry{}, err
	}
	return xmlEntry, pdfEntry, nil
}

func readZipFile(f *zip.File) (zipEntry, error) {
	rc, err := f.Open()
	if err != nil {
		return zipEntry{}, fmt.Errorf("zip: abrir %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return zipEntry{}, fmt.Errorf("zip: leer %s: %w", f.Name, err)
	}
	if len(data) > maxEntrySize {
		return zipEntry{}, fmt.Errorf("%w: %s supera el tamaño máximo", domain.ErrInvalidInput, f.Name)
	}
	return zipEntry{name: path.Base(strings.ReplaceAll(f.Name, "\\", "/")), data: data}, nil
}
