package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var badRequestErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrVendorReferenceRequired,
	domain.ErrBillDateRequired,
	domain.ErrPartnerRequired,
	domain.ErrNoLines,
	domain.ErrNegativeTotal,
	domain.ErrNotCorrectable,
	domain.ErrCompanyVATInvalid,
	domain.ErrTaxOfficeMissing,
	domain.ErrCompanyEmailMissing,
	domain.ErrDeclarationSectionRequired,
	domain.ErrUnsupportedSchema,
	domain.ErrInvalidPeriod,
}

var conflictErrors = []error{
	domain.ErrConflict,
	domain.ErrDuplicate,
	domain.ErrEmailAlreadyExists,
	domain.ErrAlreadyPosted,
	domain.ErrNotPosted,
	domain.ErrInvoiceHasCorrections,
	domain.ErrDirectCorrectionExists,
	domain.ErrCorrectionOfCorrectionExists,
}

// respondError traduce un error de dominio a status HTTP y dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case isAny(err, badRequestErrors):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case isAny(err, conflictErrors):
		status, code = fiber.StatusConflict, "CONFLICT"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// bindBody parsea el body JSON y lo valida con las etiquetas validate del DTO.
// Si falla ya escribe la respuesta 400 y devuelve false.
func bindBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return checkStruct(c, out)
}

// bindQuery equivalente a bindBody para parámetros de query.
func bindQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	return checkStruct(c, out)
}

func checkStruct(c *fiber.Ctx, out any) (bool, error) {
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+": "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// pageFromQuery lee limit/offset con los topes del listado (20 por defecto, 100 máx).
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	if p.Limit > 100 {
		p.Limit = 100
	}
	p.DefaultPage()
	return p
}
