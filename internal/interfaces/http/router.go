package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/va-app/va-dian/internal/application/certificate"
	appdian "github.com/va-app/va-dian/internal/application/dian"
	"github.com/va-app/va-dian/internal/application/report"
	apptercero "github.com/va-app/va-dian/internal/application/tercero"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DocumentUC    *appdian.DocumentUseCase
	TerceroUC     *apptercero.UseCase
	ReportUC      *report.UseCase
	CertificateUC *certificate.UseCase
	JWTSecret     string
	JWTIssuer     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	anyRole := RequireRole(RoleAdmin, RoleContador, RoleLector)
	writers := RequireRole(RoleAdmin, RoleContador)

	// Documentos DIAN
	docs := api.Group("/dian/documents")
	dianHandler := NewDIANHandler(deps.DocumentUC)
	docs.Post("/ingest", writers, dianHandler.Ingest)
	docs.Get("/:name/extract", anyRole, dianHandler.Extract)
	docs.Post("/:name/sync", writers, dianHandler.Sync)
	docs.Post("/:name/tercero", writers, dianHandler.UpsertTercero)
	docs.Post("/:name/rename-attachments", writers, dianHandler.RenameAttachments)

	// Terceros; /resolve antes de /:nit
	terceros := api.Group("/terceros")
	terceroHandler := NewTerceroHandler(deps.TerceroUC)
	terceros.Get("/resolve", anyRole, terceroHandler.Resolve)
	terceros.Get("/", anyRole, terceroHandler.Search)
	terceros.Put("/", writers, terceroHandler.Upsert)
	terceros.Get("/:nit", anyRole, terceroHandler.GetByNIT)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/gl-summary", anyRole, reportHandler.GLSummary)
	reports.Get("/balance-by-account-and-party", anyRole, reportHandler.Balance)

	// Certificados de retención
	certs := api.Group("/certificados")
	certHandler := NewCertificateHandler(deps.CertificateUC)
	certs.Post("/generate", RequireRole(RoleAdmin), certHandler.Generate)
}
