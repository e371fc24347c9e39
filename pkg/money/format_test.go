package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/jpk-api/pkg/money"
)

var (
	pln = money.Currency{Symbol: "zł", Position: "after", Digits: 2}
	usd = money.Currency{Symbol: "$", Position: "before", Digits: 2}
)

func TestFormat_SimboloDespues(t *testing.T) {
	f := money.NewFormatter("en_US")
	got := f.Format(decimal.RequireFromString("1234.5"), pln)
	assert.Equal(t, "1,234.50\u00a0zł", got, "el símbolo va detrás separado por espacio duro")
}

func TestFormat_SimboloAntes(t *testing.T) {
	f := money.NewFormatter("")
	got := f.Format(decimal.RequireFromString("-10"), usd)
	assert.Equal(t, "$\u00a0-10.00", got)
}

func TestFormat_CeroNegativoSeNormaliza(t *testing.T) {
	f := money.NewFormatter("en_US")
	got := f.Format(decimal.RequireFromString("-0.001"), pln)
	assert.Equal(t, "0.00\u00a0zł", got, "-0.00 no debe aparecer en el resumen")
}

func TestFormat_SinSimbolo(t *testing.T) {
	f := money.NewFormatter("en_US")
	assert.Equal(t, "7.13", f.Format(decimal.RequireFromString("7.125"), money.Currency{Digits: 2}))
}
