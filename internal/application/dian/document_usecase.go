// Package dian casos de uso de los documentos electrónicos recibidos de la DIAN:
// extracción del XML, sincronización del registro, terceros y adjuntos.
package dian

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/domain"
	domaindian "github.com/va-app/va-dian/internal/domain/dian"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
	pkgdian "github.com/va-app/va-dian/pkg/dian"
)

const (
	doctypeDIANDocument = "DIAN document"
	issueDateLayout     = "2006-01-02"
)

// DocumentUseCase casos de uso sobre la tabla "DIAN document".
type DocumentUseCase struct {
	docs      repository.DIANDocumentRepository
	files     repository.FileRepository
	terceros  repository.TerceroRepository
	blobs     BlobStore
	tx        TxRunner
	extractor *domaindian.Extractor
	log       zerolog.Logger
	now       func() time.Time
}

// NewDocumentUseCase construye el caso de uso con el extractor de namespaces UBL por defecto.
func NewDocumentUseCase(
	docs repository.DIANDocumentRepository,
	files repository.FileRepository,
	terceros repository.TerceroRepository,
	blobs BlobStore,
	tx TxRunner,
	log zerolog.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		docs:      docs,
		files:     files,
		terceros:  terceros,
		blobs:     blobs,
		tx:        tx,
		extractor: domaindian.NewExtractor(nil),
		log:       log,
		now:       time.Now,
	}
}

// Extract lee el XML adjunto del documento y devuelve su contenido estructurado.
func (uc *DocumentUseCase) Extract(ctx context.Context, name string) (*entity.ExtractedDocument, error) {
	doc, err := uc.getDocument(ctx, name)
	if err != nil {
		return nil, err
	}
	return uc.extract(ctx, doc)
}

func (uc *DocumentUseCase) extract(ctx context.Context, doc *entity.DIANDocument) (*entity.ExtractedDocument, error) {
	f, err := uc.xmlAttachment(ctx, doc)
	if err != nil {
		return nil, err
	}
	data, err := uc.blobs.Read(ctx, f.FileURL)
	if err != nil {
		return nil, fmt.Errorf("leer adjunto %s: %w", f.FileURL, err)
	}
	out, err := uc.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("documento %s: %w", doc.Name, err)
	}
	if out.PayloadParseError != "" {
		uc.log.Warn().
			Str("document", doc.Name).
			Str("error", out.PayloadParseError).
			Msg("documento embebido ilegible; se continúa con los datos del sobre")
	}
	return out, nil
}

// SyncFromXML actualiza el documento con los datos de su XML y lo renombra con el UUID (CUFE).
// Falla con ErrMissingUUID si el XML no trae UUID y con ErrDuplicate si otro documento ya tiene ese CUFE.
func (uc *DocumentUseCase) SyncFromXML(ctx context.Context, name string) (*dto.DIANDocumentResponse, error) {
	doc, err := uc.getDocument(ctx, name)
	if err != nil {
		return nil, err
	}
	ext, err := uc.extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	uuid := strings.TrimSpace(ext.UUID)
	if uuid == "" {
		return nil, fmt.Errorf("documento %s: %w", name, domaindian.ErrMissingUUID)
	}
	cufe := pkgdian.NormalizeCUFE(uuid)
	if !pkgdian.IsCUFE(cufe) {
		uc.log.Warn().Str("document", name).Str("uuid", uuid).Msg("UUID sin formato CUFE/CUDE")
	}
	if err := uc.ensureCufeFree(ctx, cufe, name); err != nil {
		return nil, err
	}

	if nit := pkgdian.NormalizeNIT(ext.SenderPartyID); nit != "" {
		doc.XMLDianTercero = nit
	}
	doc.XMLCufe = cufe
	doc.XMLContent = domaindian.FormatContent(ext)
	if ext.IssueDate != "" {
		d, err := time.Parse(issueDateLayout, ext.IssueDate)
		if err != nil {
			uc.log.Warn().Str("document", name).Str("issue_date", ext.IssueDate).Msg("fecha de emisión no reconocida")
		} else {
			doc.XMLIssueDate = &d
		}
	}
	doc.UpdatedAt = uc.now()

	err = uc.tx.RunDocuments(ctx, func(docs repository.DIANDocumentRepository, _ repository.FileRepository) error {
		if err := docs.Update(ctx, doc); err != nil {
			return fmt.Errorf("actualizar documento %s: %w", name, err)
		}
		if doc.Name != uuid {
			if err := docs.Rename(ctx, doc.Name, uuid); err != nil {
				return fmt.Errorf("renombrar documento %s: %w", name, err)
			}
			doc.Name = uuid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document", doc.Name).Str("tercero", doc.XMLDianTercero).Msg("documento sincronizado desde XML")
	return dto.NewDIANDocumentResponse(doc), nil
}

// UpsertTerceroFromXML crea o actualiza el tercero emisor del documento.
func (uc *DocumentUseCase) UpsertTerceroFromXML(ctx context.Context, name string) (*dto.UpsertTerceroResponse, error) {
	ext, err := uc.Extract(ctx, name)
	if err != nil {
		return nil, err
	}
	t := TerceroFromExtracted(ext)
	if t.NIT == "" {
		return nil, fmt.Errorf("%w: el documento %s no identifica al emisor", domain.ErrInvalidInput, name)
	}
	created, err := uc.terceros.Upsert(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("upsert tercero %s: %w", t.NIT, err)
	}
	uc.log.Info().Str("nit", t.NIT).Bool("created", created).Msg("tercero actualizado desde XML")
	return &dto.UpsertTerceroResponse{NIT: t.NIT, Created: created}, nil
}

// TerceroFromExtracted arma el tercero con los datos del emisor. El NIT va sin dígito de verificación.
func TerceroFromExtracted(ext *entity.ExtractedDocument) *entity.Tercero {
	nit := pkgdian.NormalizeNIT(ext.SenderPartyID)
	t := &entity.Tercero{
		NIT:                  nit,
		NumeroIdentificacion: nit,
		TipoDocumento:        pkgdian.IdentificationTypeNIT,
		RazonSocial:          ext.SenderPartyName,
		CorreoElectronico:    ext.SenderEmail,
		Telefono1:            ext.SenderTelephone,
	}
	if a := ext.SenderAddress; a != nil {
		t.DireccionPrincipal = a.Line
		t.CiudadMunicipio = a.City
		t.Departamento = a.Department
		t.CodigoPostal = a.PostalZone
		t.Pais = a.Country
	}
	return t
}

func (uc *DocumentUseCase) getDocument(ctx context.Context, name string) (*entity.DIANDocument, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: nombre de documento vacío", domain.ErrInvalidInput)
	}
	doc, err := uc.docs.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get dian document %s: %w", name, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("documento %s: %w", name, domain.ErrNotFound)
	}
	return doc, nil
}

// xmlAttachment localiza el adjunto XML: primero el del campo xml, si no el primer adjunto .xml.
func (uc *DocumentUseCase) xmlAttachment(ctx context.Context, doc *entity.DIANDocument) (*entity.File, error) {
	if doc.XML == "" {
		return nil, fmt.Errorf("documento %s sin adjunto XML: %w", doc.Name, domain.ErrNotFound)
	}
	f, err := uc.files.GetByURL(ctx, doc.XML)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", doc.XML, err)
	}
	if f != nil {
		return f, nil
	}
	attached, err := uc.files.ListAttachedTo(ctx, doctypeDIANDocument, doc.Name)
	if err != nil {
		return nil, fmt.Errorf("list attachments %s: %w", doc.Name, err)
	}
	for _, a := range attached {
		if strings.Contains(strings.ToLower(a.FileURL), "xml") {
			return a, nil
		}
	}
	return nil, fmt.Errorf("adjunto XML del documento %s: %w", doc.Name, domain.ErrNotFound)
}

func (uc *DocumentUseCase) ensureCufeFree(ctx context.Context, cufe, owner string) error {
	other, err := uc.docs.GetByCufe(ctx, cufe)
	if err != nil {
		return fmt.Errorf("get by cufe: %w", err)
	}
	if other != nil && other.Name != owner {
		return fmt.Errorf("%w: el CUFE %s ya está registrado en %s", domain.ErrDuplicate, cufe, other.Name)
	}
	return nil
}

// isExtractionError errores del contenido del XML (no de infraestructura).
func isExtractionError(err error) bool {
	return errors.Is(err, domaindian.ErrMalformedXML) ||
		errors.Is(err, domaindian.ErrMissingEmbeddedPayload) ||
		errors.Is(err, domaindian.ErrUnsupportedDocumentType) ||
		errors.Is(err, domaindian.ErrMissingUUID)
}
