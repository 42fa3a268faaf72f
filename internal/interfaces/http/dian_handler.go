package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	appdian "github.com/va-app/va-dian/internal/application/dian"
)

// maxZipSize límite del zip recibido por multipart.
const maxZipSize = 50 << 20

// DIANHandler maneja las peticiones HTTP de documentos DIAN (protegido).
type DIANHandler struct {
	uc *appdian.DocumentUseCase
}

// NewDIANHandler construye el handler.
func NewDIANHandler(uc *appdian.DocumentUseCase) *DIANHandler {
	return &DIANHandler{uc: uc}
}

// Ingest POST /api/dian/documents/ingest (multipart, campo "file" con el zip de la DIAN)
func (h *DIANHandler) Ingest(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "INVALID_BODY", "se espera el zip en el campo 'file'")
	}
	if fh.Size > maxZipSize {
		return badRequest(c, "FILE_TOO_LARGE", "el zip supera el tamaño permitido")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "INVALID_BODY", "no se pudo leer el archivo")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxZipSize))
	if err != nil {
		return badRequest(c, "INVALID_BODY", "no se pudo leer el archivo")
	}
	doc, err := h.uc.IngestZip(c.UserContext(), fh.Filename, data)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Extract GET /api/dian/documents/:name/extract
func (h *DIANHandler) Extract(c *fiber.Ctx) error {
	out, err := h.uc.Extract(c.UserContext(), c.Params("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Sync POST /api/dian/documents/:name/sync
func (h *DIANHandler) Sync(c *fiber.Ctx) error {
	out, err := h.uc.SyncFromXML(c.UserContext(), c.Params("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpsertTercero POST /api/dian/documents/:name/tercero
func (h *DIANHandler) UpsertTercero(c *fiber.Ctx) error {
	out, err := h.uc.UpsertTerceroFromXML(c.UserContext(), c.Params("name"))
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if out.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}

// RenameAttachments POST /api/dian/documents/:name/rename-attachments
func (h *DIANHandler) RenameAttachments(c *fiber.Ctx) error {
	out, err := h.uc.RenameAttachments(c.UserContext(), c.Params("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
