package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/application/invoicing"
)

// CatalogHandler impuestos, grupos, tipos de cambio, productos y diarios.
type CatalogHandler struct {
	uc *invoicing.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *invoicing.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// CreateTaxGroup godoc
// @Summary      Crear grupo de VAT
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTaxGroupRequest  true  "Grupo"
// @Success      201   {object}  dto.TaxGroupResponse
// @Router       /api/tax-groups [post]
func (h *CatalogHandler) CreateTaxGroup(c *fiber.Ctx) error {
	var in dto.CreateTaxGroupRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateTaxGroup(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateTax godoc
// @Summary      Crear impuesto
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTaxRequest  true  "Impuesto"
// @Success      201   {object}  dto.TaxResponse
// @Router       /api/taxes [post]
func (h *CatalogHandler) CreateTax(c *fiber.Ctx) error {
	var in dto.CreateTaxRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateTax(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTaxes godoc
// @Summary      Listar impuestos
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.TaxResponse
// @Router       /api/taxes [get]
func (h *CatalogHandler) ListTaxes(c *fiber.Ctx) error {
	out, err := h.uc.ListTaxes(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateRate godoc
// @Summary      Registrar tipo de cambio
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateRateRequest  true  "Tipo de cambio"
// @Success      201   {object}  dto.CurrencyRateResponse
// @Router       /api/currency-rates [post]
func (h *CatalogHandler) CreateRate(c *fiber.Ctx) error {
	var in dto.CreateRateRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateRate(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateProduct godoc
// @Summary      Crear producto
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateProductRequest  true  "Producto"
// @Success      201   {object}  dto.ProductResponse
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateProduct(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	out, err := h.uc.ListProducts(c.UserContext(), GetCompanyID(c), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateJournal godoc
// @Summary      Crear diario
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateJournalRequest  true  "Diario"
// @Success      201   {object}  dto.JournalResponse
// @Router       /api/journals [post]
func (h *CatalogHandler) CreateJournal(c *fiber.Ctx) error {
	var in dto.CreateJournalRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateJournal(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListJournals godoc
// @Summary      Listar diarios
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.JournalResponse
// @Router       /api/journals [get]
func (h *CatalogHandler) ListJournals(c *fiber.Ctx) error {
	out, err := h.uc.ListJournals(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
