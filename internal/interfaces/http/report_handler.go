package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/application/report"
)

// ReportHandler reportes del libro mayor por tercero (protegido).
type ReportHandler struct {
	uc *report.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// GLSummary GET /api/reports/gl-summary?company=...&from_date=2025-01-01&to_date=2025-12-31&account=...
func (h *ReportHandler) GLSummary(c *fiber.Ctx) error {
	var in dto.LedgerReportRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.GLSummary(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Balance GET /api/reports/balance-by-account-and-party
func (h *ReportHandler) Balance(c *fiber.Ctx) error {
	var in dto.LedgerReportRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.BalanceByAccountAndParty(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
