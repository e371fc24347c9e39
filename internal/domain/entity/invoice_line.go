package entity

import "github.com/shopspring/decimal"

// Tipos de línea contable.
const (
	LineKindProduct = "product"
	LineKindTax     = "tax"
	LineKindTerm    = "payment_term" // contrapartida a cobrar/pagar
)

// InvoiceLine representa una línea contable de un documento.
type InvoiceLine struct {
	ID        string
	InvoiceID string
	Sequence  int
	Kind      string // product, tax, payment_term
	ProductID string
	Name      string

	Quantity  decimal.Decimal
	PriceUnit decimal.Decimal
	Discount  decimal.Decimal // porcentaje

	TaxIDs     []string // impuestos aplicados a la línea base
	TaxLineID  string   // impuesto que generó la línea de impuesto
	TaxGroupID string   // grupo del impuesto de la línea de impuesto

	// Corrected marca las líneas que reflejan el estado tras la corrección.
	Corrected bool
	GTU       string
	TagIDs    []string // etiquetas contables con mapeo JPK

	PriceSubtotal  decimal.Decimal
	PriceTotal     decimal.Decimal
	AmountCurrency decimal.Decimal // importe firmado en la moneda del documento
	Balance        decimal.Decimal // importe firmado en la moneda de la empresa (debe - haber)
}

// QuantityReverse cantidad de la línea corregida expresada en el sentido de la factura original.
func (l *InvoiceLine) QuantityReverse() decimal.Decimal {
	return l.Quantity.Neg()
}

// IsTax informa si la línea fue generada por un impuesto.
func (l *InvoiceLine) IsTax() bool {
	return l.TaxLineID != ""
}

// Clone devuelve una copia sin identificadores ni importes calculados.
func (l *InvoiceLine) Clone() *InvoiceLine {
	c := *l
	c.ID = ""
	c.InvoiceID = ""
	c.TaxIDs = append([]string(nil), l.TaxIDs...)
	c.TagIDs = append([]string(nil), l.TagIDs...)
	return &c
}
