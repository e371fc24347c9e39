package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/application/reporting"
)

// JPKHandler generación de archivos JPK, diccionarios y declaraciones VAT-7.
type JPKHandler struct {
	uc *reporting.JPKUseCase
}

// NewJPKHandler construye el handler.
func NewJPKHandler(uc *reporting.JPKUseCase) *JPKHandler {
	return &JPKHandler{uc: uc}
}

// GenerateVAT godoc
// @Summary      Generar JPK_VAT(3)
// @Tags         jpk
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.GenerateVATRequest  true  "Periodo"
// @Success      200   {object}  dto.JPKFileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/jpk/vat [post]
func (h *JPKHandler) GenerateVAT(c *fiber.Ctx) error {
	var in dto.GenerateVATRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.GenerateVAT(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GenerateV7M godoc
// @Summary      Generar JPK_V7M
// @Description  Genera el XML (1-2E o 1-0E) y guarda la declaración VAT-7 editable.
// @Tags         jpk
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.GenerateV7MRequest  true  "Versión y mes"
// @Success      201   {object}  dto.JPKFileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/jpk/v7m [post]
func (h *JPKHandler) GenerateV7M(c *fiber.Ctx) error {
	var in dto.GenerateV7MRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.GenerateV7M(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Dictionaries godoc
// @Summary      Diccionarios JPK (tipos de documento, GTU)
// @Tags         jpk
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DictionaryResponse
// @Router       /api/jpk/dictionaries [get]
func (h *JPKHandler) Dictionaries(c *fiber.Ctx) error {
	out, err := h.uc.Dictionaries(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TaxOffices godoc
// @Summary      Urzędy skarbowe
// @Tags         jpk
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.TaxOfficeResponse
// @Router       /api/jpk/tax-offices [get]
func (h *JPKHandler) TaxOffices(c *fiber.Ctx) error {
	out, err := h.uc.TaxOffices(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ImportTaxOffices godoc
// @Summary      Importar urzędy skarbowe desde el XSD KodyUrzedowSkarbowych
// @Tags         jpk
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "XSD"
// @Success      200   {object}  map[string]int
// @Router       /api/jpk/tax-offices/import [post]
func (h *JPKHandler) ImportTaxOffices(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	n, err := h.uc.ImportTaxOffices(c.UserContext(), f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"imported": n})
}

// GetDeclaration godoc
// @Summary      Obtener declaración VAT-7
// @Tags         declarations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la declaración"
// @Success      200  {object}  dto.DeclarationResponse
// @Router       /api/declarations/{id} [get]
func (h *JPKHandler) GetDeclaration(c *fiber.Ctx) error {
	out, err := h.uc.GetDeclaration(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListDeclarations godoc
// @Summary      Listar declaraciones VAT-7
// @Tags         declarations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DeclarationListResponse
// @Router       /api/declarations [get]
func (h *JPKHandler) ListDeclarations(c *fiber.Ctx) error {
	out, err := h.uc.ListDeclarations(c.UserContext(), GetCompanyID(c), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateDeclaration godoc
// @Summary      Editar posiciones de la declaración
// @Description  Solo las posiciones de entrada; las calculadas se recalculan.
// @Tags         declarations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                        true  "ID de la declaración"
// @Param        body  body  dto.UpdateDeclarationRequest  true  "Cambios"
// @Success      200   {object}  dto.DeclarationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/declarations/{id} [patch]
func (h *JPKHandler) UpdateDeclaration(c *fiber.Ctx) error {
	var in dto.UpdateDeclarationRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateDeclaration(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeclarationXML godoc
// @Summary      Descargar XML de la declaración
// @Tags         declarations
// @Produce      application/xml
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la declaración"
// @Success      200  {file}  file
// @Router       /api/declarations/{id}/xml [get]
func (h *JPKHandler) DeclarationXML(c *fiber.Ctx) error {
	filename, data, err := h.uc.DeclarationXML(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.Send(data)
}
