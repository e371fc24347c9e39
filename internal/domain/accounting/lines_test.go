package accounting_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/domain/accounting"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTaxes() map[string]*entity.Tax {
	return map[string]*entity.Tax{
		"vat23": {
			ID: "vat23", Name: "VAT 23%", Amount: d("23"), TaxGroupID: "g23",
			InvoiceBaseTagIDs: []string{"k19"}, InvoiceTaxTagIDs: []string{"k20"},
			RefundBaseTagIDs: []string{"k19r"}, RefundTaxTagIDs: []string{"k20r"},
		},
		"vat8": {ID: "vat8", Name: "VAT 8%", Amount: d("8"), TaxGroupID: "g8"},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recompute: factura de venta en PLN con dos tipos de VAT.
// ──────────────────────────────────────────────────────────────────────────────

func TestRecompute_FacturaVentaPLN(t *testing.T) {
	inv := &entity.Invoice{
		MoveType: entity.MoveTypeOutInvoice,
		Lines: []*entity.InvoiceLine{
			{Kind: entity.LineKindProduct, Quantity: d("2"), PriceUnit: d("50"), TaxIDs: []string{"vat23"}},
			{Kind: entity.LineKindProduct, Quantity: d("1"), PriceUnit: d("200"), Discount: d("10"), TaxIDs: []string{"vat8"}},
		},
	}

	require.NoError(t, accounting.Recompute(inv, testTaxes(), decimal.NewFromInt(1)))

	assert.True(t, d("280").Equal(inv.AmountUntaxed), "base: 100 + 180")
	assert.True(t, d("37.40").Equal(inv.AmountTax), "impuesto: 23 + 14.40")
	assert.True(t, d("317.40").Equal(inv.AmountTotal))
	assert.True(t, d("317.40").Equal(inv.AmountTotalSigned), "venta: total firmado positivo")

	require.Len(t, inv.TaxLines(), 2)
	tax23 := inv.TaxLines()[0]
	assert.Equal(t, "vat23", tax23.TaxLineID)
	assert.True(t, d("-23").Equal(tax23.Balance), "venta: impuesto al haber")
	assert.Equal(t, []string{"k20"}, tax23.TagIDs)
	assert.Equal(t, []string{"k19"}, inv.ProductLines()[0].TagIDs)

	assert.NoError(t, accounting.CheckBalanced(inv))
}

func TestRecompute_MonedaExtranjeraYEtiquetasDeCorreccion(t *testing.T) {
	inv := &entity.Invoice{
		MoveType: entity.MoveTypeOutRefund,
		Lines: []*entity.InvoiceLine{
			{Kind: entity.LineKindProduct, Quantity: d("-1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
		},
	}

	require.NoError(t, accounting.Recompute(inv, testTaxes(), d("4.5")))

	line := inv.ProductLines()[0]
	assert.True(t, d("-100").Equal(line.AmountCurrency), "cantidad negativa en corrección de venta")
	assert.True(t, d("-450").Equal(line.Balance))
	assert.Equal(t, []string{"k19r"}, line.TagIDs)
	assert.Equal(t, []string{"k20r"}, inv.TaxLines()[0].TagIDs)
	assert.True(t, d("-123").Equal(inv.AmountTotal))
	assert.NoError(t, accounting.CheckBalanced(inv))
}

func TestRecompute_ImpuestoDesconocido(t *testing.T) {
	inv := &entity.Invoice{
		MoveType: entity.MoveTypeInInvoice,
		Lines:    []*entity.InvoiceLine{{Kind: entity.LineKindProduct, Quantity: d("1"), PriceUnit: d("1"), TaxIDs: []string{"nope"}}},
	}
	err := accounting.Recompute(inv, testTaxes(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, accounting.ErrUnknownTax)
}

func TestRateDate_Prioridad(t *testing.T) {
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	sale := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	invDate := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, sale, accounting.RateDate(&entity.Invoice{SaleDate: sale, InvoiceDate: invDate}, today))
	assert.Equal(t, invDate, accounting.RateDate(&entity.Invoice{InvoiceDate: invDate}, today))
	assert.Equal(t, today, accounting.RateDate(&entity.Invoice{}, today))
}

func TestManualRateAllowed(t *testing.T) {
	company := &entity.Company{CurrencyCode: "PLN", EnableInvoiceRateChange: true}
	assert.True(t, accounting.ManualRateAllowed(company, &entity.Invoice{CurrencyCode: "EUR"}))
	assert.False(t, accounting.ManualRateAllowed(company, &entity.Invoice{CurrencyCode: "PLN"}))
	company.EnableInvoiceRateChange = false
	assert.False(t, accounting.ManualRateAllowed(company, &entity.Invoice{CurrencyCode: "EUR"}))
}
