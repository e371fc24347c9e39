package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/taxtotals"
)

// DateLayout formato de las fechas en requests y responses.
const DateLayout = "2006-01-02"

// CreateInvoiceRequest body para POST /api/invoices. Las fechas van en formato AAAA-MM-DD.
type CreateInvoiceRequest struct {
	MoveType          string               `json:"move_type" validate:"required,oneof=out_invoice in_invoice out_receipt in_receipt entry"`
	PartnerID         string               `json:"partner_id" validate:"omitempty,uuid"`
	JournalID         string               `json:"journal_id" validate:"omitempty,uuid"`
	Ref               string               `json:"ref" validate:"omitempty,max=100"`
	CurrencyCode      string               `json:"currency_code" validate:"omitempty,len=3"`
	CurrencyRate      decimal.Decimal      `json:"currency_rate"`
	Date              string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	InvoiceDate       string               `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	SaleDate          string               `json:"sale_date" validate:"omitempty,datetime=2006-01-02"`
	VATDate           string               `json:"vat_date" validate:"omitempty,datetime=2006-01-02"`
	DateDue           string               `json:"date_due" validate:"omitempty,datetime=2006-01-02"`
	IsDownPayment     bool                 `json:"is_down_payment"`
	AdvanceInvoiceIDs []string             `json:"advance_invoice_ids" validate:"omitempty,dive,uuid"`
	SaleDocType       string               `json:"sale_doc_type" validate:"omitempty,oneof=RO FP WEW"`
	PurchaseDocType   string               `json:"purchase_doc_type" validate:"omitempty,oneof=MK VAT_RR WEW"`
	Flags             entity.JPKFlags      `json:"flags"`
	ChangeJPKProof    string               `json:"change_jpk_proof" validate:"omitempty,max=100"`
	Lines             []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InvoiceLineRequest línea de producto de la factura.
type InvoiceLineRequest struct {
	ProductID string          `json:"product_id" validate:"omitempty,uuid"`
	Name      string          `json:"name" validate:"omitempty,max=500"`
	Quantity  decimal.Decimal `json:"quantity"`
	PriceUnit decimal.Decimal `json:"price_unit"`
	Discount  decimal.Decimal `json:"discount"`
	TaxIDs    []string        `json:"tax_ids" validate:"omitempty,dive,uuid"`
	GTU       string          `json:"gtu" validate:"omitempty,oneof=GTU_01 GTU_02 GTU_03 GTU_04 GTU_05 GTU_06 GTU_07 GTU_08 GTU_09 GTU_10 GTU_11 GTU_12 GTU_13"`
}

// InvoiceResponse documento con sus líneas.
type InvoiceResponse struct {
	ID                   string                `json:"id"`
	CompanyID            string                `json:"company_id"`
	JournalID            string                `json:"journal_id"`
	PartnerID            string                `json:"partner_id,omitempty"`
	Name                 string                `json:"name"`
	Ref                  string                `json:"ref,omitempty"`
	MoveType             string                `json:"move_type"`
	State                string                `json:"state"`
	CurrencyCode         string                `json:"currency_code"`
	CurrencyRate         decimal.Decimal       `json:"currency_rate"`
	Date                 string                `json:"date,omitempty"`
	InvoiceDate          string                `json:"invoice_date,omitempty"`
	SaleDate             string                `json:"sale_date,omitempty"`
	VATDate              string                `json:"vat_date,omitempty"`
	DateDue              string                `json:"date_due,omitempty"`
	RefundInvoiceID      string                `json:"refund_invoice_id,omitempty"`
	SelectedCorrectionID string                `json:"selected_correction_id,omitempty"`
	CorrectionReason     string                `json:"correction_reason,omitempty"`
	CorrectionCount      int                   `json:"correction_count"`
	SaleDocType          string                `json:"sale_doc_type,omitempty"`
	PurchaseDocType      string                `json:"purchase_doc_type,omitempty"`
	Flags                entity.JPKFlags       `json:"flags"`
	AmountUntaxed        decimal.Decimal       `json:"amount_untaxed"`
	AmountTax            decimal.Decimal       `json:"amount_tax"`
	AmountTotal          decimal.Decimal       `json:"amount_total"`
	AmountUntaxedSigned  decimal.Decimal       `json:"amount_untaxed_signed"`
	AmountTotalSigned    decimal.Decimal       `json:"amount_total_signed"`
	Lines                []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse línea contable en la respuesta.
type InvoiceLineResponse struct {
	ID             string          `json:"id"`
	Sequence       int             `json:"sequence"`
	Kind           string          `json:"kind"`
	ProductID      string          `json:"product_id,omitempty"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	PriceUnit      decimal.Decimal `json:"price_unit"`
	Discount       decimal.Decimal `json:"discount"`
	TaxIDs         []string        `json:"tax_ids,omitempty"`
	TaxLineID      string          `json:"tax_line_id,omitempty"`
	Corrected      bool            `json:"corrected"`
	GTU            string          `json:"gtu,omitempty"`
	PriceSubtotal  decimal.Decimal `json:"price_subtotal"`
	PriceTotal     decimal.Decimal `json:"price_total"`
	AmountCurrency decimal.Decimal `json:"amount_currency"`
	Balance        decimal.Decimal `json:"balance"`
}

// InvoiceListRequest filtros de GET /api/invoices.
type InvoiceListRequest struct {
	PageRequest
	MoveType string `query:"move_type" validate:"omitempty,oneof=out_invoice out_refund in_invoice in_refund out_receipt in_receipt entry"`
	State    string `query:"state" validate:"omitempty,oneof=draft posted cancel"`
	DateFrom string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// InvoiceListResponse lista paginada de documentos (sin líneas).
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateCorrectionRequest body para POST /api/invoices/:id/corrections.
// SelectedCorrectionID vacío crea la corrección directa de la factura.
type CreateCorrectionRequest struct {
	SelectedCorrectionID string                 `json:"selected_correction_id" validate:"omitempty,uuid"`
	Date                 string                 `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Reason               string                 `json:"reason" validate:"required,max=500"`
	Ref                  string                 `json:"ref" validate:"omitempty,max=100"`
	Lines                []CorrectedLineRequest `json:"lines" validate:"omitempty,dive"`
}

// CorrectedLineRequest nuevo estado de una línea corregida, por posición entre las corregidas.
type CorrectedLineRequest struct {
	Index     int              `json:"index" validate:"min=0"`
	Quantity  *decimal.Decimal `json:"quantity"`
	PriceUnit *decimal.Decimal `json:"price_unit"`
	Discount  *decimal.Decimal `json:"discount"`
}

// TaxTotalsRequest opciones de GET /api/invoices/:id/tax-totals.
type TaxTotalsRequest struct {
	WithDownPayments bool `query:"with_down_payments"`
}

// RegisterReportRequest filtros del rejestr faktur.
type RegisterReportRequest struct {
	DateFrom string `query:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"required,datetime=2006-01-02"`
	Kind     string `query:"kind" validate:"omitempty,oneof=sale purchase"`
	State    string `query:"state" validate:"omitempty,oneof=draft posted cancel"`
}

// RegisterRow fila del rejestr faktur con importes en PLN por grupo de VAT.
type RegisterRow struct {
	InvoiceID     string                     `json:"invoice_id"`
	Number        string                     `json:"number"`
	PartnerID     string                     `json:"partner_id,omitempty"`
	PartnerName   string                     `json:"partner_name"`
	InvoiceDate   string                     `json:"invoice_date,omitempty"`
	SaleDate      string                     `json:"sale_date,omitempty"`
	VATDate       string                     `json:"vat_date,omitempty"`
	Address       string                     `json:"address"`
	City          string                     `json:"city"`
	Zip           string                     `json:"zip"`
	NIP           string                     `json:"nip"`
	Company       string                     `json:"company"`
	DateDue       string                     `json:"date_due"`
	State         string                     `json:"state"`
	CorrectionOf  string                     `json:"correction_of,omitempty"`
	CurrencyCode  string                     `json:"currency_code"`
	NetPLN        decimal.Decimal            `json:"net_pln"`
	GroupsPLN     map[string]decimal.Decimal `json:"groups_pln"`
	GrossPLN      decimal.Decimal            `json:"gross_pln"`
	GrossCurrency decimal.Decimal            `json:"gross_currency"`
}

// RegisterReportResponse filas del registro y nombres de las columnas de grupos de VAT.
type RegisterReportResponse struct {
	Groups []string      `json:"groups"`
	Rows   []RegisterRow `json:"rows"`
}

// InvoiceSummaryResponse desglose por grupo de VAT; Corrected solo en correcciones.
type InvoiceSummaryResponse struct {
	Summary   *taxtotals.Summary `json:"summary"`
	Corrected *taxtotals.Summary `json:"corrected,omitempty"`
}
