package taxtotals_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/taxtotals"
)

func TestAmountSummary_GrupoVacioParaLineasSinImpuesto(t *testing.T) {
	inv := buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("50")},
	)

	res := taxtotals.AmountSummary(input(inv, 1, pln))

	require.NotNil(t, res)
	require.Len(t, res.ByGroup, 2)
	assert.Equal(t, "", res.ByGroup[0].TaxGroupID, "el grupo vacío tiene secuencia 0")
	assert.True(t, d("50").Equal(res.ByGroup[0].BaseAmount))
	assert.Equal(t, "g23", res.ByGroup[1].TaxGroupID)
	assert.True(t, d("23").Equal(res.ByGroup[1].TaxAmount))
	assert.Equal(t, 2, res.ByGroup[1].GroupCount)

	assert.True(t, d("150").Equal(res.Totals.BaseFloat))
	assert.True(t, d("23").Equal(res.Totals.AmountFloat))
	assert.True(t, d("173").Equal(res.Totals.TotalFloat))
	assert.Equal(t, "173.00\u00a0zł", res.Totals.Total)
}

func TestAmountSummary_AsientoDevuelveNil(t *testing.T) {
	assert.Nil(t, taxtotals.AmountSummary(input(&entity.Invoice{MoveType: entity.MoveTypeEntry}, 1, pln)))
}

func TestAmountSummary_CeroNormalizado(t *testing.T) {
	inv := buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("0.001"), TaxIDs: []string{"vat23"}},
	)
	res := taxtotals.AmountSummary(input(inv, -1, pln))
	assert.Equal(t, "0.00\u00a0zł", res.Totals.Base)
}

func TestCorrectedSummary_NegaGruposYSumaAlOriginal(t *testing.T) {
	original := taxtotals.AmountSummary(input(buildInvoice(t, entity.MoveTypeOutInvoice, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("50")},
	), 1, pln))

	corr := buildInvoice(t, entity.MoveTypeOutRefund, "1",
		&entity.InvoiceLine{Quantity: d("1"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
		&entity.InvoiceLine{Quantity: d("-1"), PriceUnit: d("80"), TaxIDs: []string{"vat23"}, Corrected: true},
	)
	corr.RefundInvoiceID = "inv"
	in := input(corr, -1, pln)
	summary := taxtotals.AmountSummary(in)
	require.True(t, d("-20").Equal(summary.Totals.BaseFloat))

	res := taxtotals.CorrectedSummary(summary, original, in)

	require.NotNil(t, res)
	require.Len(t, res.ByGroup, 1)
	assert.True(t, d("-20").Equal(res.ByGroup[0].BaseAmount))
	assert.True(t, d("-4.6").Equal(res.ByGroup[0].TaxAmount))
	assert.True(t, d("170").Equal(res.Totals.BaseFloat), "150 - (-20)")
	assert.True(t, d("27.6").Equal(res.Totals.AmountFloat))
	assert.True(t, d("197.6").Equal(res.Totals.TotalFloat))
	assert.True(t, d("173").Equal(original.Totals.TotalFloat), "el original no se modifica")
}

func TestCorrectedSummary_SinFacturaOriginal(t *testing.T) {
	in := input(&entity.Invoice{MoveType: entity.MoveTypeOutRefund}, 1, pln)
	assert.Nil(t, taxtotals.CorrectedSummary(&taxtotals.Summary{}, &taxtotals.Summary{}, in))
}
