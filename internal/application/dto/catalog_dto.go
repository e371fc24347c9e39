package dto

import "github.com/shopspring/decimal"

// CreateTaxGroupRequest body para POST /api/tax-groups.
type CreateTaxGroupRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	Sequence          int    `json:"sequence" validate:"min=0"`
	PrecedingSubtotal string `json:"preceding_subtotal" validate:"omitempty,max=100"`
}

// TaxGroupResponse grupo de VAT.
type TaxGroupResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Sequence          int    `json:"sequence"`
	PrecedingSubtotal string `json:"preceding_subtotal,omitempty"`
}

// CreateTaxRequest body para POST /api/taxes. Las etiquetas son IDs de account tags.
type CreateTaxRequest struct {
	Name              string          `json:"name" validate:"required,max=100"`
	Amount            decimal.Decimal `json:"amount"`
	TypeTaxUse        string          `json:"type_tax_use" validate:"required,oneof=sale purchase"`
	TaxGroupID        string          `json:"tax_group_id" validate:"required,uuid"`
	Exigibility       string          `json:"exigibility" validate:"omitempty,oneof=on_invoice on_payment"`
	InvoiceBaseTagIDs []string        `json:"invoice_base_tag_ids" validate:"omitempty,dive,uuid"`
	InvoiceTaxTagIDs  []string        `json:"invoice_tax_tag_ids" validate:"omitempty,dive,uuid"`
	RefundBaseTagIDs  []string        `json:"refund_base_tag_ids" validate:"omitempty,dive,uuid"`
	RefundTaxTagIDs   []string        `json:"refund_tax_tag_ids" validate:"omitempty,dive,uuid"`
}

// TaxResponse impuesto con su grupo.
type TaxResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	TypeTaxUse   string          `json:"type_tax_use"`
	TaxGroupID   string          `json:"tax_group_id"`
	TaxGroupName string          `json:"tax_group_name,omitempty"`
	Exigibility  string          `json:"exigibility"`
}

// CreateRateRequest body para POST /api/currency-rates: 1 unidad = Rate en moneda de la empresa.
type CreateRateRequest struct {
	CurrencyCode string          `json:"currency_code" validate:"required,len=3"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	Rate         decimal.Decimal `json:"rate"`
}

// CurrencyRateResponse tipo de cambio registrado.
type CurrencyRateResponse struct {
	ID           string          `json:"id"`
	CurrencyCode string          `json:"currency_code"`
	Date         string          `json:"date"`
	Rate         decimal.Decimal `json:"rate"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU    string          `json:"sku" validate:"required,max=50"`
	Name   string          `json:"name" validate:"required,max=200"`
	Price  decimal.Decimal `json:"price"`
	TaxIDs []string        `json:"tax_ids" validate:"omitempty,dive,uuid"`
	GTU    string          `json:"gtu" validate:"omitempty,oneof=GTU_01 GTU_02 GTU_03 GTU_04 GTU_05 GTU_06 GTU_07 GTU_08 GTU_09 GTU_10 GTU_11 GTU_12 GTU_13"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID     string          `json:"id"`
	SKU    string          `json:"sku"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	TaxIDs []string        `json:"tax_ids"`
	GTU    string          `json:"gtu,omitempty"`
}

// CreateJournalRequest body para POST /api/journals.
type CreateJournalRequest struct {
	Code            string `json:"code" validate:"required,max=10"`
	Name            string `json:"name" validate:"required,max=100"`
	Type            string `json:"type" validate:"required,oneof=sale purchase general"`
	Prefix          string `json:"prefix" validate:"required,max=20"`
	SaleDocType     string `json:"sale_doc_type" validate:"omitempty,oneof=RO FP WEW"`
	PurchaseDocType string `json:"purchase_doc_type" validate:"omitempty,oneof=MK VAT_RR WEW"`
	IsDefault       bool   `json:"is_default"`
}

// JournalResponse diario contable.
type JournalResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Prefix          string `json:"prefix"`
	NextNumber      int64  `json:"next_number"`
	SaleDocType     string `json:"sale_doc_type,omitempty"`
	PurchaseDocType string `json:"purchase_doc_type,omitempty"`
	IsDefault       bool   `json:"is_default"`
}
