package entity

import "time"

// Company representa una organización/tenant del sistema (multi-tenant, enfoque Polonia).
type Company struct {
	ID           string
	Name         string
	VAT          string // NIP, con o sin prefijo PL
	Street       string
	Street2      string
	City         string
	Zip          string
	CountryCode  string
	Phone        string
	Email        string
	CurrencyCode string // moneda contable, normalmente PLN
	Lang         string // idioma de formato de importes (pl_PL, en_US)
	TaxOfficeID  string // urząd skarbowy para JPK_V7M
	County       string // powiat
	Community    string // gmina
	Post         string // poczta
	// EnableInvoiceRateChange permite fijar el tipo de cambio en la factura.
	EnableInvoiceRateChange bool
	Status                  string // active, suspended, inactive
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleInvoicing = "invoicing"
	ModuleJPK       = "jpk"
)

// CompanyModule representa la activación de un módulo SaaS en una empresa.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
