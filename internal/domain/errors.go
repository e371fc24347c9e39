package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores de facturación y correcciones.
var (
	ErrDirectCorrectionExists       = errors.New("no puede haber dos correcciones directas para una factura")
	ErrCorrectionOfCorrectionExists = errors.New("no puede haber dos correcciones para una misma corrección")
	ErrInvoiceHasCorrections        = errors.New("la factura tiene correcciones y no puede volver a borrador o cancelarse")
	ErrVendorReferenceRequired      = errors.New("la referencia del proveedor es obligatoria en documentos de compra")
	ErrBillDateRequired             = errors.New("la fecha de factura es obligatoria en documentos de compra")
	ErrPartnerRequired              = errors.New("el contratista es obligatorio")
	ErrNoLines                      = errors.New("la factura debe tener al menos una línea")
	ErrNegativeTotal                = errors.New("solo las correcciones pueden tener total negativo")
	ErrAlreadyPosted                = errors.New("la factura ya está contabilizada")
	ErrNotPosted                    = errors.New("la factura no está contabilizada")
	ErrNotCorrectable               = errors.New("solo se pueden corregir facturas contabilizadas")
)

// Errores de JPK y declaración VAT-7.
var (
	ErrCompanyVATInvalid          = errors.New("el NIP de la empresa es incorrecto")
	ErrTaxOfficeMissing           = errors.New("la empresa no tiene urząd skarbowy asignado")
	ErrCompanyEmailMissing        = errors.New("la empresa no tiene email configurado")
	ErrDeclarationSectionRequired = errors.New("Przynajmniej jedna sekcja musi być wskazana")
	ErrUnsupportedSchema          = errors.New("versión de esquema JPK no soportada")
	ErrInvalidPeriod              = errors.New("periodo JPK inválido")
)
