package dian_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdian "github.com/va-app/va-dian/internal/application/dian"
	"github.com/va-app/va-dian/internal/domain"
	domaindian "github.com/va-app/va-dian/internal/domain/dian"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/infrastructure/memory"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const fixtureUUID = "3a1f0c5e9b7d2a4c6e8f0a1b3c5d7e9f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b"

type env struct {
	uc       *appdian.DocumentUseCase
	docs     *memory.DIANDocumentRepository
	files    *memory.FileRepository
	terceros *memory.TerceroRepository
	blobs    *memory.BlobStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	files := memory.NewFileRepository()
	docs := memory.NewDIANDocumentRepository(files)
	terceros := memory.NewTerceroRepository(memory.NewRecordStore())
	blobs := memory.NewBlobStore()
	tx := &memory.TxRunner{Docs: docs, Files: files}
	uc := appdian.NewDocumentUseCase(docs, files, terceros, blobs, tx, zerolog.Nop())
	return &env{uc: uc, docs: docs, files: files, terceros: terceros, blobs: blobs}
}

func fixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/attached_document.xml")
	require.NoError(t, err)
	return b
}

// seed crea un documento Draft con su XML (y opcionalmente un PDF) adjunto.
func (e *env) seed(t *testing.T, name string, xml []byte, withPDF bool) {
	t.Helper()
	ctx := context.Background()
	doc := &entity.DIANDocument{Name: name, Status: entity.DIANDocumentStatusDraft}
	if xml != nil {
		doc.XML = "/private/files/ad0800197268.xml"
		require.NoError(t, e.blobs.Write(ctx, doc.XML, xml))
		require.NoError(t, e.files.Create(ctx, &entity.File{
			Name: name + "-xml", FileName: "ad0800197268.xml", FileURL: doc.XML, IsPrivate: true,
			AttachedToType: "DIAN document", AttachedToName: name, AttachedToField: entity.AttachmentFieldXML,
		}))
	}
	if withPDF {
		doc.Representation = "/private/files/ad0800197268.pdf"
		require.NoError(t, e.blobs.Write(ctx, doc.Representation, []byte("%PDF-1.4")))
		require.NoError(t, e.files.Create(ctx, &entity.File{
			Name: name + "-pdf", FileName: "ad0800197268.pdf", FileURL: doc.Representation, IsPrivate: true,
			AttachedToType: "DIAN document", AttachedToName: name, AttachedToField: entity.AttachmentFieldRepresentation,
		}))
	}
	require.NoError(t, e.docs.Create(ctx, doc))
}

func zipOf(t *testing.T, files map[string][]byte, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// ── Extract ──────────────────────────────────────────────────────────────────

func TestExtract_LeeElXMLAdjunto(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), false)

	got, err := e.uc.Extract(context.Background(), "draft-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentTypeFacturaElectronica, got.DocumentType)
	assert.Equal(t, fixtureUUID, got.UUID)
	assert.Equal(t, "900123456", got.SenderPartyID)
	assert.Len(t, got.Items, 2)
}

func TestExtract_DocumentoInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.Extract(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtract_DocumentoSinXML(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", nil, false)
	_, err := e.uc.Extract(context.Background(), "draft-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtract_ReportaXMLMalFormado(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", []byte("<AttachedDocument><sin-cerrar>"), false)
	_, err := e.uc.Extract(context.Background(), "draft-1")
	assert.ErrorIs(t, err, domaindian.ErrMalformedXML)
}

// ── SyncFromXML ──────────────────────────────────────────────────────────────

func TestSyncFromXML_ActualizaYRenombraAlUUID(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), false)
	ctx := context.Background()

	res, err := e.uc.SyncFromXML(ctx, "draft-1")
	require.NoError(t, err)
	assert.Equal(t, fixtureUUID, res.Name)
	assert.Equal(t, "900123456", res.Tercero)
	assert.Equal(t, fixtureUUID, res.Cufe)
	require.NotNil(t, res.IssueDate)
	assert.Equal(t, time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC), *res.IssueDate)
	assert.Contains(t, res.Content, "sender_party_id: 900123456\n")

	old, err := e.docs.GetByName(ctx, "draft-1")
	require.NoError(t, err)
	assert.Nil(t, old)

	attached, err := e.files.ListAttachedTo(ctx, "DIAN document", fixtureUUID)
	require.NoError(t, err)
	assert.Len(t, attached, 1)
}

func TestSyncFromXML_EsRepetible(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), false)
	ctx := context.Background()

	_, err := e.uc.SyncFromXML(ctx, "draft-1")
	require.NoError(t, err)
	res, err := e.uc.SyncFromXML(ctx, fixtureUUID)
	require.NoError(t, err)
	assert.Equal(t, fixtureUUID, res.Name)
	assert.Equal(t, 1, e.docs.Len())
}

func TestSyncFromXML_SinUUID(t *testing.T) {
	e := newEnv(t)
	xml := strings.Replace(string(fixture(t)), fixtureUUID, "", 1)
	xml = strings.Replace(xml, "fallback-uuid-outer-tree", "", 1)
	e.seed(t, "draft-1", []byte(xml), false)

	_, err := e.uc.SyncFromXML(context.Background(), "draft-1")
	assert.ErrorIs(t, err, domaindian.ErrMissingUUID)
}

func TestSyncFromXML_RechazaCufeDeOtroDocumento(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.docs.Create(ctx, &entity.DIANDocument{Name: "otro", XMLCufe: fixtureUUID}))
	e.seed(t, "draft-1", fixture(t), false)

	_, err := e.uc.SyncFromXML(ctx, "draft-1")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ── UpsertTerceroFromXML ─────────────────────────────────────────────────────

func TestUpsertTerceroFromXML_CreaYLuegoActualiza(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), false)
	ctx := context.Background()

	res, err := e.uc.UpsertTerceroFromXML(ctx, "draft-1")
	require.NoError(t, err)
	assert.Equal(t, "900123456", res.NIT)
	assert.True(t, res.Created)

	got, err := e.terceros.GetByNIT(ctx, "900123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Proveedor Andino S.A.S.", got.RazonSocial)
	assert.Equal(t, "Calle 100 # 10-20", got.DireccionPrincipal)
	assert.Equal(t, "Bogotá, D.C.", got.CiudadMunicipio)
	assert.Equal(t, "Bogotá", got.Departamento)
	assert.Equal(t, "110111", got.CodigoPostal)
	assert.Equal(t, "Colombia", got.Pais)
	assert.Equal(t, "facturacion@andino.co", got.CorreoElectronico)
	assert.Equal(t, "6015550100", got.Telefono1)

	res, err = e.uc.UpsertTerceroFromXML(ctx, "draft-1")
	require.NoError(t, err)
	assert.False(t, res.Created)
}

func TestTerceroFromExtracted_QuitaDigitoDeVerificacion(t *testing.T) {
	got := appdian.TerceroFromExtracted(&entity.ExtractedDocument{
		SenderPartyID:   "900123456-7",
		SenderPartyName: "Proveedor",
	})
	assert.Equal(t, "900123456", got.NIT)
	assert.Empty(t, got.DireccionPrincipal)
}

// ── RenameAttachments ────────────────────────────────────────────────────────

func TestAttachmentFileName_PrefijoYNombreSaneado(t *testing.T) {
	assert.Equal(t, "25-05-07 900123456 ad0800197268.xml",
		appdian.AttachmentFileName("25-05-07 900123456", "ad0800197268.xml"))
	assert.Equal(t, "25-05-07 900123456 Factura 12.pdf",
		appdian.AttachmentFileName("25-05-07 900123456", "Factura #12?.pdf"))

	long := strings.Repeat("a", 120) + ".xml"
	got := appdian.AttachmentFileName("p", long)
	assert.Equal(t, "p "+strings.Repeat("a", 80)+".xml", got)
}

func TestRenameAttachments_RenombraYEsIdempotente(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), true)
	ctx := context.Background()
	_, err := e.uc.SyncFromXML(ctx, "draft-1")
	require.NoError(t, err)

	res, err := e.uc.RenameAttachments(ctx, fixtureUUID)
	require.NoError(t, err)
	require.Len(t, res.Renamed, 2)
	assert.Equal(t, "/private/files/25-05-07 900123456 ad0800197268.xml", res.Renamed[0].To)
	assert.Equal(t, "/private/files/25-05-07 900123456 ad0800197268.pdf", res.Renamed[1].To)

	doc, err := e.docs.GetByName(ctx, fixtureUUID)
	require.NoError(t, err)
	assert.Equal(t, res.Renamed[0].To, doc.XML)
	ok, err := e.blobs.Exists(ctx, doc.XML)
	require.NoError(t, err)
	assert.True(t, ok)

	// Extract sigue funcionando con el adjunto renombrado.
	_, err = e.uc.Extract(ctx, fixtureUUID)
	require.NoError(t, err)

	again, err := e.uc.RenameAttachments(ctx, fixtureUUID)
	require.NoError(t, err)
	assert.Empty(t, again.Renamed)
	assert.Empty(t, again.Skipped)
}

func TestRenameAttachments_NuncaSobrescribe(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), false)
	ctx := context.Background()
	_, err := e.uc.SyncFromXML(ctx, "draft-1")
	require.NoError(t, err)
	target := "/private/files/25-05-07 900123456 ad0800197268.xml"
	require.NoError(t, e.blobs.Write(ctx, target, []byte("ocupado")))

	res, err := e.uc.RenameAttachments(ctx, fixtureUUID)
	require.NoError(t, err)
	assert.Empty(t, res.Renamed)
	assert.Equal(t, []string{"/private/files/ad0800197268.xml"}, res.Skipped)

	b, err := e.blobs.Read(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, "ocupado", string(b))
}

// pdfRenameFails falla al renombrar cualquier adjunto hacia un destino .pdf.
type pdfRenameFails struct {
	*memory.BlobStore
}

func (s pdfRenameFails) Rename(ctx context.Context, oldURL, newURL string) error {
	if strings.HasSuffix(newURL, ".pdf") {
		return errors.New("disco lleno")
	}
	return s.BlobStore.Rename(ctx, oldURL, newURL)
}

func TestRenameAttachments_FalloParcialRegistraLoMovido(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), true)
	ctx := context.Background()
	_, err := e.uc.SyncFromXML(ctx, "draft-1")
	require.NoError(t, err)

	uc := appdian.NewDocumentUseCase(e.docs, e.files, e.terceros, pdfRenameFails{e.blobs},
		&memory.TxRunner{Docs: e.docs, Files: e.files}, zerolog.Nop())
	_, err = uc.RenameAttachments(ctx, fixtureUUID)
	require.Error(t, err)

	renamedXML := "/private/files/25-05-07 900123456 ad0800197268.xml"
	doc, err := e.docs.GetByName(ctx, fixtureUUID)
	require.NoError(t, err)
	assert.Equal(t, renamedXML, doc.XML)
	assert.Equal(t, "/private/files/ad0800197268.pdf", doc.Representation)

	f, err := e.files.GetByURL(ctx, renamedXML)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "25-05-07 900123456 ad0800197268.xml", f.FileName)

	// Un segundo intento con el almacenamiento sano completa el PDF.
	res, err := e.uc.RenameAttachments(ctx, fixtureUUID)
	require.NoError(t, err)
	require.Len(t, res.Renamed, 1)
	assert.Equal(t, entity.AttachmentFieldRepresentation, res.Renamed[0].Field)
	assert.Empty(t, res.Skipped)
}

func TestRenameAttachments_RequiereTerceroYFecha(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "draft-1", fixture(t), false)
	_, err := e.uc.RenameAttachments(context.Background(), "draft-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── IngestZip ────────────────────────────────────────────────────────────────

func TestIngestZip_FlujoCompleto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	data := zipOf(t, map[string][]byte{
		"ad0800197268.xml": fixture(t),
		"ad0800197268.pdf": []byte("%PDF-1.4"),
		"otro.xml":         []byte("<x/>"),
	}, "ad0800197268.pdf", "ad0800197268.xml", "otro.xml")

	res, err := e.uc.IngestZip(ctx, "z.zip", data)
	require.NoError(t, err)
	assert.Equal(t, fixtureUUID, res.Name)
	assert.Equal(t, entity.DIANDocumentStatusProcessed, res.Status)
	assert.Equal(t, "/private/files/25-05-07 900123456 ad0800197268.xml", res.XML)
	assert.Equal(t, "/private/files/25-05-07 900123456 ad0800197268.pdf", res.Representation)

	attached, err := e.files.ListAttachedTo(ctx, "DIAN document", fixtureUUID)
	require.NoError(t, err)
	require.Len(t, attached, 2)
	for _, f := range attached {
		assert.True(t, f.IsPrivate)
	}
	assert.ElementsMatch(t, []string{res.XML, res.Representation}, e.blobs.URLs())
}

func TestIngestZip_RequiereXMLYPDF(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.uc.IngestZip(ctx, "z.zip", zipOf(t, map[string][]byte{"a.pdf": []byte("%PDF")}, "a.pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.uc.IngestZip(ctx, "z.zip", zipOf(t, map[string][]byte{"a.xml": fixture(t)}, "a.xml"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.uc.IngestZip(ctx, "z.zip", []byte("no es zip"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, e.docs.Len())
}

func TestIngestZip_RechazaCufeDuplicadoAntesDeCrear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	data := zipOf(t, map[string][]byte{"a.xml": fixture(t), "a.pdf": []byte("%PDF")}, "a.xml", "a.pdf")

	_, err := e.uc.IngestZip(ctx, "z.zip", data)
	require.NoError(t, err)

	_, err = e.uc.IngestZip(ctx, "z.zip", data)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 1, e.docs.Len())
}

func TestIngestZip_MarcaErrorSiFallaLaSincronizacion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	xml := strings.Replace(string(fixture(t)), fixtureUUID, "", 1)
	xml = strings.Replace(xml, "fallback-uuid-outer-tree", "", 1)
	data := zipOf(t, map[string][]byte{"a.xml": []byte(xml), "a.pdf": []byte("%PDF")}, "a.xml", "a.pdf")

	_, err := e.uc.IngestZip(ctx, "z.zip", data)
	require.ErrorIs(t, err, domaindian.ErrMissingUUID)
	require.Equal(t, 1, e.docs.Len())

	f, err := e.files.GetByURL(ctx, "/private/files/a.xml")
	require.NoError(t, err)
	require.NotNil(t, f)
	doc, err := e.docs.GetByName(ctx, f.AttachedToName)
	require.NoError(t, err)
	assert.Equal(t, entity.DIANDocumentStatusError, doc.Status)
}
