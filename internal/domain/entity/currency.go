package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posición del símbolo de moneda respecto al importe.
const (
	SymbolBefore = "before"
	SymbolAfter  = "after"
)

// Currency representa una moneda ISO 4217.
type Currency struct {
	Code     string // PLN, EUR, USD
	Symbol   string // zł, €, $
	Position string // before, after
	Digits   int32  // decimales de redondeo
}

// Round redondea el importe a la precisión de la moneda.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Digits)
}

// IsZero informa si el importe es cero a la precisión de la moneda.
func (c Currency) IsZero(amount decimal.Decimal) bool {
	return c.Round(amount).IsZero()
}

// CurrencyRate tipo de cambio de una moneda a la moneda de la empresa (1 unidad = Rate PLN).
type CurrencyRate struct {
	ID           string
	CompanyID    string
	CurrencyCode string
	Date         time.Time
	Rate         decimal.Decimal
	CreatedAt    time.Time
}
