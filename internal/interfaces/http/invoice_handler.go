package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/application/invoicing"
)

// InvoiceHandler maneja facturas, correcciones y sus informes (protegido).
type InvoiceHandler struct {
	uc *invoicing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *invoicing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create godoc
// @Summary      Crear factura en borrador
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateInvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura con líneas
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        move_type  query  string  false  "Tipo de documento"
// @Param        state      query  string  false  "draft, posted o cancel"
// @Param        date_from  query  string  false  "AAAA-MM-DD"
// @Param        date_to    query  string  false  "AAAA-MM-DD"
// @Success      200        {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var in dto.InvoiceListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.PageRequest = pageFromQuery(c)
	if ok, err := checkStruct(c, &in); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Post godoc
// @Summary      Contabilizar factura
// @Description  Valida la factura, asigna número del diario y fecha VAT.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/post [post]
func (h *InvoiceHandler) Post(c *fiber.Ctx) error {
	out, err := h.uc.Post(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ResetToDraft godoc
// @Summary      Volver a borrador
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/draft [post]
func (h *InvoiceHandler) ResetToDraft(c *fiber.Ctx) error {
	out, err := h.uc.ResetToDraft(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar factura
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateCorrection godoc
// @Summary      Crear factura correctiva
// @Description  Sin selected_correction_id corrige la factura; con él, corrige esa corrección.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "ID de la factura original"
// @Param        body  body  dto.CreateCorrectionRequest  true  "Corrección"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/corrections [post]
func (h *InvoiceHandler) CreateCorrection(c *fiber.Ctx) error {
	var in dto.CreateCorrectionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateCorrection(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// TaxTotals godoc
// @Summary      Totales de impuestos por subtotal y grupo
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id                  path   string  true   "ID de la factura"
// @Param        with_down_payments  query  bool    false  "Incluir anticipos"
// @Success      200  {object}  taxtotals.Totals
// @Router       /api/invoices/{id}/tax-totals [get]
func (h *InvoiceHandler) TaxTotals(c *fiber.Ctx) error {
	var in dto.TaxTotalsRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.TaxTotals(c.UserContext(), GetCompanyID(c), c.Params("id"), in.WithDownPayments)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen VAT (y estado anterior en correcciones)
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceSummaryResponse
// @Router       /api/invoices/{id}/summary [get]
func (h *InvoiceHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Register godoc
// @Summary      Rejestr faktur
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        date_from  query  string  true   "AAAA-MM-DD"
// @Param        date_to    query  string  true   "AAAA-MM-DD"
// @Param        kind       query  string  false  "sale o purchase"
// @Param        state      query  string  false  "draft, posted o cancel"
// @Success      200        {object}  dto.RegisterReportResponse
// @Router       /api/invoices/register [get]
func (h *InvoiceHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterReportRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.Register(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
