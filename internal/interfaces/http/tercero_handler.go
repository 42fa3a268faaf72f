package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/va-app/va-dian/internal/application/dto"
	apptercero "github.com/va-app/va-dian/internal/application/tercero"
	"github.com/va-app/va-dian/internal/domain/entity"
)

// TerceroHandler maneja las peticiones HTTP de terceros (protegido).
type TerceroHandler struct {
	uc *apptercero.UseCase
}

// NewTerceroHandler construye el handler.
func NewTerceroHandler(uc *apptercero.UseCase) *TerceroHandler {
	return &TerceroHandler{uc: uc}
}

// Upsert PUT /api/terceros
func (h *TerceroHandler) Upsert(c *fiber.Ctx) error {
	var in entity.Tercero
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Upsert(c.UserContext(), &in)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if out.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}

// GetByNIT GET /api/terceros/:nit
func (h *TerceroHandler) GetByNIT(c *fiber.Ctx) error {
	t, err := h.uc.Get(c.UserContext(), c.Params("nit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// Search GET /api/terceros?q=acme&limit=20&offset=0
func (h *TerceroHandler) Search(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros de paginación inválidos")
	}
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Resolve GET /api/terceros/resolve?party_type=Supplier&party=SUP-1&voucher_type=...&voucher_no=...
func (h *TerceroHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveTerceroRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.Resolve(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
