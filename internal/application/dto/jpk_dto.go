package dto

import "time"

// GenerateVATRequest body para POST /api/jpk/vat.
type GenerateVATRequest struct {
	DateFrom      string `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo        string `json:"date_to" validate:"required,datetime=2006-01-02"`
	Correction    int    `json:"correction" validate:"min=0,max=99"`
	IncludeDrafts bool   `json:"include_drafts"`
}

// GenerateV7MRequest body para POST /api/jpk/v7m. CelZlozenia 1 = złożenie, 2 = korekta.
type GenerateV7MRequest struct {
	Version     string `json:"version" validate:"required,oneof=1-2E 1-0E"`
	Year        int    `json:"year" validate:"required,min=2020,max=2100"`
	Month       int    `json:"month" validate:"required,min=1,max=12"`
	CelZlozenia int    `json:"cel_zlozenia" validate:"omitempty,oneof=1 2"`

	// ExcludeOnPayment omite impuestos con exigibilidad al cobro (metoda kasowa).
	ExcludeOnPayment bool `json:"exclude_on_payment"`
}

// JPKFileResponse archivo JPK generado.
type JPKFileResponse struct {
	Filename      string `json:"filename"`
	Content       string `json:"content"`
	Digest        string `json:"digest"`
	ArchiveKey    string `json:"archive_key,omitempty"`
	DeclarationID string `json:"declaration_id,omitempty"`
	SaleRows      int    `json:"sale_rows"`
	PurchaseRows  int    `json:"purchase_rows"`
}

// UpdateDeclarationRequest body para PATCH /api/declarations/:id. Las claves de Ints y
// Bools son posiciones en minúsculas (p_10, p_59...).
type UpdateDeclarationRequest struct {
	Ints              map[string]int64 `json:"ints"`
	Bools             map[string]bool  `json:"bools"`
	P5558             *string          `json:"p_55_58" validate:"omitempty,oneof=P_55 P_56 P_57 P_58"`
	P61               *string          `json:"p_61" validate:"omitempty,max=240"`
	POrdzu            *string          `json:"p_ordzu" validate:"omitempty,max=240"`
	CzescDeklaracyjna *bool            `json:"czesc_deklaracyjna"`
	CzescEwidencyjna  *bool            `json:"czesc_ewidencyjna"`
}

// DeclarationResponse declaración VAT-7 exportada.
type DeclarationResponse struct {
	ID                string           `json:"id"`
	CompanyID         string           `json:"company_id"`
	Version           string           `json:"version"`
	Year              int              `json:"year"`
	Month             int              `json:"month"`
	CelZlozenia       int              `json:"cel_zlozenia"`
	CzescDeklaracyjna bool             `json:"czesc_deklaracyjna"`
	CzescEwidencyjna  bool             `json:"czesc_ewidencyjna"`
	Ints              map[string]int64 `json:"ints"`
	Bools             map[string]bool  `json:"bools"`
	P5558             string           `json:"p_55_58,omitempty"`
	P61               string           `json:"p_61,omitempty"`
	POrdzu            string           `json:"p_ordzu,omitempty"`
	Filename          string           `json:"filename"`
	ArchiveKey        string           `json:"archive_key,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// DeclarationListResponse lista paginada de declaraciones.
type DeclarationListResponse struct {
	Items []DeclarationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// TaxOfficeResponse urząd skarbowy del diccionario.
type TaxOfficeResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// DictionaryResponse diccionarios JPK para formularios.
type DictionaryResponse struct {
	DocumentTypes    []DocumentTypeResponse `json:"document_types"`
	GTU              []GTUResponse          `json:"gtu"`
	SaleDocTypes     map[string]string      `json:"sale_doc_types"`
	PurchaseDocTypes map[string]string      `json:"purchase_doc_types"`
}

// DocumentTypeResponse tipo de archivo JPK.
type DocumentTypeResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	JPKType       string `json:"jpk_type"`
	SystemCode    string `json:"system_code"`
	SchemaVersion string `json:"schema_version"`
}

// GTUResponse código GTU.
type GTUResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
