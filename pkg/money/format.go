// Package money formatea importes por idioma y moneda.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const nbsp = "\u00a0"

// Currency datos de la moneda necesarios para formatear.
type Currency struct {
	Symbol   string
	Position string // before, after
	Digits   int32
}

// Formatter formatea importes con separadores del idioma y símbolo de la moneda.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter construye un Formatter para el idioma (pl_PL, en_US, pl-PL...). Vacío = inglés.
func NewFormatter(lang string) *Formatter {
	tag := language.English
	if lang != "" {
		if t, err := language.Parse(strings.ReplaceAll(lang, "_", "-")); err == nil {
			tag = t
		}
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format devuelve el importe con sus decimales y el símbolo separado por espacio duro.
func (f *Formatter) Format(amount decimal.Decimal, c Currency) string {
	digits := c.Digits
	if digits == 0 {
		digits = 2
	}
	rounded := amount.Round(digits)
	if rounded.IsZero() {
		rounded = decimal.Zero
	}
	res := f.printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(int(digits))))
	if c.Symbol == "" {
		return res
	}
	if c.Position == "before" {
		return c.Symbol + nbsp + res
	}
	return res + nbsp + c.Symbol
}
