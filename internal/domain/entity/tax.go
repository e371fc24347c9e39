package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ámbito del impuesto.
const (
	TaxUseSale     = "sale"
	TaxUsePurchase = "purchase"
)

// Exigibilidad del impuesto: on_payment corresponde a la metoda kasowa.
const (
	TaxExigibilityOnInvoice = "on_invoice"
	TaxExigibilityOnPayment = "on_payment"
)

// TaxGroup agrupa tipos de VAT para el resumen de la factura.
type TaxGroup struct {
	ID                string
	CompanyID         string
	Name              string
	Sequence          int
	PrecedingSubtotal string // título del subtotal que precede al grupo; vacío = subtotal por defecto
}

// Tax representa un tipo de VAT (23%, 8%, 5%, 0%, zw, np).
type Tax struct {
	ID          string
	CompanyID   string
	Name        string
	Amount      decimal.Decimal // porcentaje
	TypeTaxUse  string          // sale, purchase
	TaxGroupID  string
	Exigibility string // on_invoice, on_payment
	// Etiquetas JPK aplicadas a las líneas base e impuesto según el tipo de documento.
	InvoiceBaseTagIDs []string
	InvoiceTaxTagIDs  []string
	RefundBaseTagIDs  []string
	RefundTaxTagIDs   []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Compute devuelve el importe de impuesto para la base indicada.
func (t *Tax) Compute(base decimal.Decimal) decimal.Decimal {
	return base.Mul(t.Amount).Div(decimal.NewFromInt(100))
}

// BaseTags etiquetas de la línea base según sea factura o corrección.
func (t *Tax) BaseTags(refund bool) []string {
	if refund {
		return t.RefundBaseTagIDs
	}
	return t.InvoiceBaseTagIDs
}

// TaxTags etiquetas de la línea de impuesto según sea factura o corrección.
func (t *Tax) TaxTags(refund bool) []string {
	if refund {
		return t.RefundTaxTagIDs
	}
	return t.InvoiceTaxTagIDs
}
