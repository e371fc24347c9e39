package taxtotals_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/domain/accounting"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/taxtotals"
	"github.com/jhoicas/jpk-api/pkg/money"
)

var (
	pln = entity.Currency{Code: "PLN", Symbol: "zł", Position: entity.SymbolAfter, Digits: 2}
	eur = entity.Currency{Code: "EUR", Symbol: "€", Position: entity.SymbolAfter, Digits: 2}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func catalog() (map[string]*entity.Tax, map[string]*entity.TaxGroup) {
	taxes := map[string]*entity.Tax{
		"vat23":  {ID: "vat23", Name: "23%", Amount: d("23"), TaxGroupID: "g23"},
		"vat23b": {ID: "vat23b", Name: "23% bis", Amount: d("0"), TaxGroupID: "g23"},
		"vat8":   {ID: "vat8", Name: "8%", Amount: d("8"), TaxGroupID: "g8"},
		"vat5":   {ID: "vat5", Name: "5%", Amount: d("5"), TaxGroupID: "g5"},
	}
	groups := map[string]*entity.TaxGroup{
		"g23": {ID: "g23", Name: "VAT 23%", Sequence: 1},
		"g8":  {ID: "g8", Name: "VAT 8%", Sequence: 2},
		"g5":  {ID: "g5", Name: "VAT 5%", Sequence: 10, PrecedingSubtotal: "Po rabacie"},
	}
	return taxes, groups
}

func buildInvoice(t *testing.T, mt entity.MoveType, rate string, lines ...*entity.InvoiceLine) *entity.Invoice {
	t.Helper()
	taxes, _ := catalog()
	for i, l := range lines {
		l.Kind = entity.LineKindProduct
		if l.ID == "" {
			l.ID = string(rune('a' + i))
		}
	}
	inv := &entity.Invoice{ID: "inv", MoveType: mt, Lines: lines}
	require.NoError(t, accounting.Recompute(inv, taxes, d(rate)))
	for i, l := range inv.Lines {
		if l.ID == "" {
			l.ID = "gen" + string(rune('0'+i))
		}
	}
	return inv
}

func input(inv *entity.Invoice, sign int, cur entity.Currency) taxtotals.Input {
	taxes, groups := catalog()
	return taxtotals.Input{
		Invoice:         inv,
		Taxes:           taxes,
		Groups:          groups,
		Sign:            sign,
		Currency:        cur,
		CompanyCurrency: pln,
		Formatter:       money.NewFormatter("en_US"),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// TaxTotals: agrupación por subtotal y grupo de VAT.
// ──────────────────────────────────────────────────────────────────────────────

func TestTaxTotals_DosGruposVenta(t *testing.T) {
	inv := buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
		&entity.InvoiceLine{Quantity: d("2"), PriceUnit: d("100"), TaxIDs: []string{"vat8"}},
	)

	res := taxtotals.TaxTotals(input(inv, 1, pln))

	groups := res.GroupsBySubtotal[taxtotals.DefaultSubtotalTitle]
	require.Len(t, groups, 2)
	assert.Equal(t, "g23", groups[0].TaxGroupID, "ordenados por secuencia")
	assert.True(t, d("100").Equal(groups[0].BaseAmount))
	assert.True(t, d("23").Equal(groups[0].TaxAmount))
	assert.True(t, d("123").Equal(groups[0].TotalAmount))
	assert.Equal(t, "Untaxed Amount-g23", groups[0].GroupKey)
	assert.Equal(t, "123.00\u00a0zł", groups[0].FormattedTotalAmount)
	assert.True(t, d("200").Equal(groups[1].BaseAmount))
	assert.True(t, d("16").Equal(groups[1].TaxAmount))

	require.Len(t, res.Subtotals, 1)
	assert.True(t, d("300").Equal(res.Subtotals[0].Amount))
	assert.True(t, d("339").Equal(res.AmountTotal))
	assert.True(t, d("39").Equal(res.TaxAmount))
	assert.True(t, d("39").Equal(res.TaxAmountInPLN))
}

func TestTaxTotals_MonedaExtranjeraImporteEnPLN(t *testing.T) {
	inv := buildInvoice(t, entity.MoveTypeOutInvoice, "4",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
	)

	res := taxtotals.TaxTotals(input(inv, 1, eur))

	g := res.GroupsBySubtotal[taxtotals.DefaultSubtotalTitle][0]
	assert.True(t, d("23").Equal(g.TaxAmount), "impuesto en EUR")
	assert.True(t, d("92").Equal(g.AmountInPLN), "impuesto convertido a PLN")
	assert.Equal(t, "92.00\u00a0zł", g.FormattedAmountInPLN)
	assert.Equal(t, "23.00\u00a0€", g.FormattedTaxAmount)
}

func TestTaxTotals_BaseNoSeDuplicaEnElMismoGrupo(t *testing.T) {
	inv := buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23", "vat23b"}},
	)

	res := taxtotals.TaxTotals(input(inv, 1, pln))

	groups := res.GroupsBySubtotal[taxtotals.DefaultSubtotalTitle]
	require.Len(t, groups, 1)
	assert.True(t, d("100").Equal(groups[0].BaseAmount), "la base se cuenta una sola vez por grupo")
}

func TestTaxTotals_SubtotalPrecedenteYPrioridad(t *testing.T) {
	inv := buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat5"}},
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
	)

	res := taxtotals.TaxTotals(input(inv, 1, pln))

	require.Len(t, res.Subtotals, 2)
	assert.Equal(t, taxtotals.DefaultSubtotalTitle, res.Subtotals[0].Name, "el subtotal por defecto va primero")
	assert.True(t, d("200").Equal(res.Subtotals[0].Amount))
	assert.Equal(t, "Po rabacie", res.Subtotals[1].Name)
	assert.True(t, d("223").Equal(res.Subtotals[1].Amount), "base + impuestos de los subtotales anteriores")
}

func TestTaxTotals_SignoNegativoNormaliza(t *testing.T) {
	inv := buildInvoice(t, entity.MoveTypeOutRefund, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
	)

	res := taxtotals.TaxTotals(input(inv, -1, pln))

	g := res.GroupsBySubtotal[taxtotals.DefaultSubtotalTitle][0]
	assert.True(t, d("-100").Equal(g.BaseAmount))
	assert.True(t, d("-23").Equal(g.TaxAmount))
	assert.True(t, d("-23").Equal(g.AmountInPLN))
	assert.True(t, d("-123").Equal(res.AmountTotal))
	assert.True(t, d("-23").Equal(res.TaxAmount))
}

func TestTaxTotals_SinLineas(t *testing.T) {
	res := taxtotals.TaxTotals(input(&entity.Invoice{MoveType: entity.MoveTypeOutInvoice}, -1, pln))
	assert.Empty(t, res.Subtotals)
	assert.True(t, res.AmountTotal.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// FinalTaxTotals: suma de anticipos.
// ──────────────────────────────────────────────────────────────────────────────

func TestFinalTaxTotals_SumaAnticipos(t *testing.T) {
	main := taxtotals.TaxTotals(input(buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
	), 1, pln))
	adv := taxtotals.TaxTotals(input(buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("50"), TaxIDs: []string{"vat23"}},
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("50"), TaxIDs: []string{"vat8"}},
	), 1, pln))
	f := money.NewFormatter("en_US")

	same := taxtotals.FinalTaxTotals(main, []*taxtotals.Totals{adv}, true, f, pln, pln)
	assert.True(t, d("123").Equal(same.AmountTotal), "con anticipos incluidos no se suma nada")

	res := taxtotals.FinalTaxTotals(main, []*taxtotals.Totals{adv}, false, f, pln, pln)
	groups := res.GroupsBySubtotal[taxtotals.DefaultSubtotalTitle]
	require.Len(t, groups, 2)
	assert.True(t, d("150").Equal(groups[0].BaseAmount))
	assert.True(t, d("34.50").Equal(groups[0].TaxAmount))
	assert.Equal(t, "g8", groups[1].TaxGroupID, "grupo solo presente en el anticipo")
	assert.True(t, d("200").Equal(res.Subtotals[0].Amount))
	assert.True(t, d("238.50").Equal(res.AmountTotal))
	assert.Equal(t, "238.50\u00a0zł", res.FormattedAmountTotal)
}
