package dto

import "time"

// CreatePartnerRequest body para POST /api/partners.
type CreatePartnerRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	VAT         string `json:"vat" validate:"omitempty,max=30"`
	Street      string `json:"street" validate:"omitempty,max=200"`
	Street2     string `json:"street2" validate:"omitempty,max=200"`
	City        string `json:"city" validate:"omitempty,max=100"`
	Zip         string `json:"zip" validate:"omitempty,max=10"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2"`
	Email       string `json:"email" validate:"omitempty,email"`
	Lang        string `json:"lang" validate:"omitempty,max=10"`
	TP          bool   `json:"tp"`
}

// UpdatePartnerRequest campos opcionales del contratista.
type UpdatePartnerRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	VAT         *string `json:"vat" validate:"omitempty,max=30"`
	Street      *string `json:"street" validate:"omitempty,max=200"`
	Street2     *string `json:"street2" validate:"omitempty,max=200"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	Zip         *string `json:"zip" validate:"omitempty,max=10"`
	CountryCode *string `json:"country_code" validate:"omitempty,len=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	TP          *bool   `json:"tp"`
}

// PartnerResponse contratista en respuestas.
type PartnerResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	VAT         string    `json:"vat"`
	Street      string    `json:"street,omitempty"`
	Street2     string    `json:"street2,omitempty"`
	City        string    `json:"city,omitempty"`
	Zip         string    `json:"zip,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	Email       string    `json:"email,omitempty"`
	TP          bool      `json:"tp"`
	TINCountry  string    `json:"tin_country,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PartnerListResponse lista paginada de contratistas.
type PartnerListResponse struct {
	Items []PartnerResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
