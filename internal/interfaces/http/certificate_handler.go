package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/va-app/va-dian/internal/application/certificate"
	"github.com/va-app/va-dian/internal/application/dto"
)

// CertificateHandler generación de certificados de retención (protegido).
type CertificateHandler struct {
	uc *certificate.UseCase
}

// NewCertificateHandler construye el handler.
func NewCertificateHandler(uc *certificate.UseCase) *CertificateHandler {
	return &CertificateHandler{uc: uc}
}

// Generate POST /api/certificados/generate
func (h *CertificateHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateCertificatesRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Generate(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
