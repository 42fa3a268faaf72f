package http_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/va-app/va-dian/internal/application/certificate"
	appdian "github.com/va-app/va-dian/internal/application/dian"
	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/application/report"
	apptercero "github.com/va-app/va-dian/internal/application/tercero"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/tercero"
	"github.com/va-app/va-dian/internal/infrastructure/memory"
	apphttp "github.com/va-app/va-dian/internal/interfaces/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

type apiEnv struct {
	app   *fiber.App
	docs  *memory.DIANDocumentRepository
	files *memory.FileRepository
}

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	return newAPIEnv(t, memory.NewBlobStore()).app
}

func newAPIEnv(t *testing.T, blobs appdian.BlobStore) *apiEnv {
	t.Helper()
	store := memory.NewRecordStore()
	store.Put("Supplier", "SUP-1", map[string]string{"custom_dian_tercero": "900123456"})
	store.Put(tercero.KindTercero, "900123456", map[string]string{"razon_social": "Proveedor Andino"})

	resolver := tercero.NewResolver(store, tercero.DefaultTables())
	terceros := memory.NewTerceroRepository(store)
	files := memory.NewFileRepository()
	docs := memory.NewDIANDocumentRepository(files)
	certs := memory.NewCertificateRepository()
	tx := &memory.TxRunner{Docs: docs, Files: files, Certs: certs}
	gl := memory.NewGLEntryRepository(entity.GLEntry{
		Name:        "GL-1",
		PostingDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Account:     "236540 - Compras - VA",
		Party:       entity.PartyReference{Type: entity.PartyTypeSupplier, ID: "SUP-1"},
		Credit:      decimal.NewFromInt(100),
		Company:     "VA",
	})
	accounts := memory.NewAccountRepository(entity.Account{Name: "236540 - Compras - VA", Lft: 1, Rgt: 2})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		DocumentUC:    appdian.NewDocumentUseCase(docs, files, terceros, blobs, tx, zerolog.Nop()),
		TerceroUC:     apptercero.NewUseCase(terceros, resolver, zerolog.Nop()),
		ReportUC:      report.NewUseCase(gl, accounts, resolver, zerolog.Nop()),
		CertificateUC: certificate.NewUseCase(certs, gl, accounts, resolver, tx, zerolog.Nop()),
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testIssuer,
	})
	return &apiEnv{app: app, docs: docs, files: files}
}

// seedDocument registra un documento con su fila File de XML, sin escribir el archivo.
func (e *apiEnv) seedDocument(t *testing.T, name string) {
	t.Helper()
	ctx := context.Background()
	url := "/private/files/" + name + ".xml"
	require.NoError(t, e.files.Create(ctx, &entity.File{
		Name: name + "-xml", FileName: name + ".xml", FileURL: url, IsPrivate: true,
		AttachedToType: "DIAN document", AttachedToName: name, AttachedToField: entity.AttachmentFieldXML,
	}))
	require.NoError(t, e.docs.Create(ctx, &entity.DIANDocument{Name: name, XML: url, Status: entity.DIANDocumentStatusDraft}))
}

// brokenBlobs almacenamiento que falla con un error de infraestructura.
type brokenBlobs struct {
	*memory.BlobStore
}

func (brokenBlobs) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("dial tcp 10.0.0.5:9000: connection refused (bucket va-dian-private)")
}

func call(t *testing.T, app *fiber.App, req *http.Request, role string) (*http.Response, []byte) {
	t.Helper()
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func ingestRequest(t *testing.T) *http.Request {
	t.Helper()
	xml, err := os.ReadFile("testdata/attached_document.xml")
	require.NoError(t, err)

	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	for name, data := range map[string][]byte{"ad0800197268.xml": xml, "ad0800197268.pdf": []byte("%PDF-1.4")} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "z0800197268.zip")
	require.NoError(t, err)
	_, err = fw.Write(zbuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dian/documents/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestRouter_IngestaLuegoExtraeYCreaTercero(t *testing.T) {
	app := newAPI(t)

	resp, body := call(t, app, ingestRequest(t), apphttp.RoleContador)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var doc dto.DIANDocumentResponse
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, entity.DIANDocumentStatusProcessed, doc.Status)
	assert.Equal(t, "900123456", doc.Tercero)

	resp, body = call(t, app, httptest.NewRequest(http.MethodGet, "/api/dian/documents/"+doc.Name+"/extract", nil), apphttp.RoleLector)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ext entity.ExtractedDocument
	require.NoError(t, json.Unmarshal(body, &ext))
	assert.Equal(t, doc.Name, ext.UUID)

	resp, body = call(t, app, httptest.NewRequest(http.MethodPost, "/api/dian/documents/"+doc.Name+"/tercero", nil), apphttp.RoleContador)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestRouter_IngestaDenegadaParaLector(t *testing.T) {
	app := newAPI(t)
	resp, _ := call(t, app, ingestRequest(t), apphttp.RoleLector)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_DocumentoInexistenteEs404(t *testing.T) {
	app := newAPI(t)
	resp, body := call(t, app, httptest.NewRequest(http.MethodGet, "/api/dian/documents/nope/extract", nil), apphttp.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestRouter_AdjuntoSinArchivoEs404(t *testing.T) {
	e := newAPIEnv(t, memory.NewBlobStore())
	e.seedDocument(t, "doc-sin-blob")

	resp, body := call(t, e.app, httptest.NewRequest(http.MethodGet, "/api/dian/documents/doc-sin-blob/extract", nil), apphttp.RoleLector)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestRouter_ErrorInternoNoExponeDetalle(t *testing.T) {
	e := newAPIEnv(t, brokenBlobs{memory.NewBlobStore()})
	e.seedDocument(t, "doc-1")

	resp, body := call(t, e.app, httptest.NewRequest(http.MethodGet, "/api/dian/documents/doc-1/extract", nil), apphttp.RoleLector)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "INTERNAL", out.Code)
	assert.NotContains(t, out.Message, "10.0.0.5")
	assert.NotContains(t, out.Message, "/private/files")
}

func TestRouter_TerceroUpsertConsultaYResuelve(t *testing.T) {
	app := newAPI(t)

	req := httptest.NewRequest(http.MethodPut, "/api/terceros", strings.NewReader(`{"nit":"800111222-3","razon_social":"Vidal y Astudillo"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := call(t, app, req, apphttp.RoleAdmin)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, app, httptest.NewRequest(http.MethodGet, "/api/terceros/800111222", nil), apphttp.RoleLector)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Vidal y Astudillo")

	resp, body = call(t, app, httptest.NewRequest(http.MethodGet, "/api/terceros/resolve?party_type=Supplier&party=SUP-1", nil), apphttp.RoleLector)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.ResolveTerceroResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "900123456", out.Tercero)
	assert.Equal(t, "900123456: Proveedor Andino", out.Label)

	resp, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/api/terceros/resolve", nil), apphttp.RoleLector)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ResumenMayor(t *testing.T) {
	app := newAPI(t)

	resp, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/gl-summary", nil), apphttp.RoleLector)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := call(t, app, httptest.NewRequest(http.MethodGet, "/api/reports/gl-summary?from_date=2025-03-01&to_date=2025-03-31", nil), apphttp.RoleLector)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "900123456: Proveedor Andino")
}

func TestRouter_CertificadosRequierenAdmin(t *testing.T) {
	app := newAPI(t)
	payload := `{"certificado_config":"CFG-1","from_date":"2025-01-01","to_date":"2025-12-31"}`

	req := httptest.NewRequest(http.MethodPost, "/api/certificados/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := call(t, app, req, apphttp.RoleContador)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/certificados/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = call(t, app, req, apphttp.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
