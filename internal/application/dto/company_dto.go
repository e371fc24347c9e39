package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name                    string `json:"name" validate:"required,min=1,max=200"`
	VAT                     string `json:"vat" validate:"required,min=10,max=20"`
	Street                  string `json:"street" validate:"omitempty,max=200"`
	Street2                 string `json:"street2" validate:"omitempty,max=200"`
	City                    string `json:"city" validate:"omitempty,max=100"`
	Zip                     string `json:"zip" validate:"omitempty,max=10"`
	CountryCode             string `json:"country_code" validate:"omitempty,len=2"`
	Phone                   string `json:"phone"`
	Email                   string `json:"email" validate:"omitempty,email"`
	CurrencyCode            string `json:"currency_code" validate:"omitempty,len=3"`
	Lang                    string `json:"lang" validate:"omitempty,max=10"`
	TaxOfficeID             string `json:"tax_office_id" validate:"omitempty,uuid"`
	County                  string `json:"county"`
	Community               string `json:"community"`
	Post                    string `json:"post"`
	EnableInvoiceRateChange bool   `json:"enable_invoice_rate_change"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name                    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Street                  *string `json:"street" validate:"omitempty,max=200"`
	Street2                 *string `json:"street2" validate:"omitempty,max=200"`
	City                    *string `json:"city" validate:"omitempty,max=100"`
	Zip                     *string `json:"zip" validate:"omitempty,max=10"`
	Phone                   *string `json:"phone"`
	Email                   *string `json:"email" validate:"omitempty,email"`
	Lang                    *string `json:"lang" validate:"omitempty,max=10"`
	TaxOfficeID             *string `json:"tax_office_id" validate:"omitempty,uuid"`
	County                  *string `json:"county"`
	Community               *string `json:"community"`
	Post                    *string `json:"post"`
	EnableInvoiceRateChange *bool   `json:"enable_invoice_rate_change"`
	Status                  *string `json:"status" validate:"omitempty,oneof=active suspended inactive"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	VAT                     string    `json:"vat"`
	Street                  string    `json:"street"`
	Street2                 string    `json:"street2,omitempty"`
	City                    string    `json:"city"`
	Zip                     string    `json:"zip"`
	CountryCode             string    `json:"country_code"`
	Phone                   string    `json:"phone"`
	Email                   string    `json:"email"`
	CurrencyCode            string    `json:"currency_code"`
	Lang                    string    `json:"lang"`
	TaxOfficeID             string    `json:"tax_office_id,omitempty"`
	County                  string    `json:"county,omitempty"`
	Community               string    `json:"community,omitempty"`
	Post                    string    `json:"post,omitempty"`
	EnableInvoiceRateChange bool      `json:"enable_invoice_rate_change"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// UpsertModuleRequest activa o desactiva un módulo de la empresa.
type UpsertModuleRequest struct {
	ModuleName string     `json:"module_name" validate:"required,oneof=invoicing jpk"`
	IsActive   bool       `json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// ModuleResponse módulo SaaS de la empresa.
type ModuleResponse struct {
	ModuleName  string     `json:"module_name"`
	IsActive    bool       `json:"is_active"`
	ActivatedAt time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
