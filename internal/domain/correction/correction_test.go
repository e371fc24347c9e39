package correction_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/accounting"
	"github.com/jhoicas/jpk-api/internal/domain/correction"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var taxes = map[string]*entity.Tax{
	"vat23": {ID: "vat23", Name: "23%", Amount: d("23"), TaxGroupID: "g23"},
}

func postedInvoice(t *testing.T) *entity.Invoice {
	t.Helper()
	inv := &entity.Invoice{
		ID:       "root",
		MoveType: entity.MoveTypeOutInvoice,
		State:    entity.InvoiceStatePosted,
		Ref:      "ZAM/1",
		Lines: []*entity.InvoiceLine{
			{ID: "l1", Kind: entity.LineKindProduct, Quantity: d("2"), PriceUnit: d("100"), TaxIDs: []string{"vat23"}},
		},
	}
	require.NoError(t, accounting.Recompute(inv, taxes, decimal.NewFromInt(1)))
	return inv
}

// ──────────────────────────────────────────────────────────────────────────────
// Build: corrección directa y corrección de corrección.
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_CorreccionDirecta(t *testing.T) {
	root := postedInvoice(t)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	c, err := correction.Build(root, nil, correction.Request{Date: date, Reason: "rabat"})
	require.NoError(t, err)

	assert.Equal(t, entity.MoveTypeOutRefund, c.MoveType)
	assert.Equal(t, "root", c.RefundInvoiceID)
	assert.Empty(t, c.SelectedCorrectionID)
	assert.Equal(t, "ZAM/1", c.Ref)
	require.Len(t, c.Lines, 2)
	assert.False(t, c.Lines[0].Corrected)
	assert.True(t, d("2").Equal(c.Lines[0].Quantity))
	assert.True(t, c.Lines[1].Corrected)
	assert.True(t, d("-2").Equal(c.Lines[1].Quantity), "la línea corregida invierte la cantidad")
	assert.Empty(t, c.Lines[1].ID)
}

func TestBuild_CorreccionDeCorreccion(t *testing.T) {
	root := postedInvoice(t)
	first, err := correction.Build(root, nil, correction.Request{})
	require.NoError(t, err)
	first.ID = "c1"
	first.Lines[1].PriceUnit = d("80")

	c, err := correction.Build(root, first, correction.Request{})
	require.NoError(t, err)

	assert.Equal(t, "c1", c.SelectedCorrectionID)
	assert.Equal(t, "root", c.RefundInvoiceID, "siempre apunta a la factura raíz")
	require.Len(t, c.Lines, 2)
	assert.False(t, c.Lines[0].Corrected)
	assert.True(t, d("-80").Equal(c.Lines[0].PriceUnit))
	assert.True(t, d("2").Equal(c.Lines[0].Quantity))
	assert.True(t, c.Lines[1].Corrected)
	assert.True(t, d("80").Equal(c.Lines[1].PriceUnit))
	assert.True(t, d("-2").Equal(c.Lines[1].Quantity))
}

func TestBuild_SoloFacturasContabilizadas(t *testing.T) {
	root := postedInvoice(t)
	root.State = entity.InvoiceStateDraft
	_, err := correction.Build(root, nil, correction.Request{})
	assert.ErrorIs(t, err, domain.ErrNotCorrectable)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sign y CorrectedAmountTotal.
// ──────────────────────────────────────────────────────────────────────────────

func TestSign_CorreccionQueReduce(t *testing.T) {
	root := postedInvoice(t)
	c, err := correction.Build(root, nil, correction.Request{})
	require.NoError(t, err)
	c.Lines[1].PriceUnit = d("80")
	require.NoError(t, accounting.Recompute(c, taxes, decimal.NewFromInt(1)))

	total, err := correction.CorrectedAmountTotal(c, taxes)
	require.NoError(t, err)
	assert.True(t, d("196.80").Equal(total), "2 x 80 con VAT")

	sign, err := correction.Sign(c, root, taxes)
	require.NoError(t, err)
	assert.Equal(t, -1, sign)
}

func TestSign_CorreccionQueAumentaOFacturaNormal(t *testing.T) {
	root := postedInvoice(t)
	c, err := correction.Build(root, nil, correction.Request{})
	require.NoError(t, err)
	c.Lines[1].PriceUnit = d("120")

	sign, err := correction.Sign(c, root, taxes)
	require.NoError(t, err)
	assert.Equal(t, 1, sign)

	sign, err = correction.Sign(root, nil, taxes)
	require.NoError(t, err)
	assert.Equal(t, 1, sign)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cadena, conteo y restricciones.
// ──────────────────────────────────────────────────────────────────────────────

func chain() (*entity.Invoice, []*entity.Invoice) {
	root := &entity.Invoice{ID: "root", MoveType: entity.MoveTypeOutInvoice}
	c1 := &entity.Invoice{ID: "c1", MoveType: entity.MoveTypeOutRefund, RefundInvoiceID: "root"}
	c2 := &entity.Invoice{ID: "c2", MoveType: entity.MoveTypeOutRefund, RefundInvoiceID: "root", SelectedCorrectionID: "c1"}
	c3 := &entity.Invoice{ID: "c3", MoveType: entity.MoveTypeOutRefund, RefundInvoiceID: "root", SelectedCorrectionID: "c2"}
	return root, []*entity.Invoice{c1, c2, c3}
}

func TestChainYCount(t *testing.T) {
	root, corrections := chain()

	got := correction.Chain("c1", corrections)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c3", got[1].ID)

	assert.Equal(t, 3, correction.Count(root, corrections), "la factura cuenta todas sus correcciones")
	assert.Equal(t, 1, correction.Count(corrections[1], corrections), "c2 solo tiene a c3 detrás")
	assert.Equal(t, 0, correction.Count(corrections[2], corrections))
}

func TestCheckUnique(t *testing.T) {
	_, corrections := chain()

	dup := &entity.Invoice{ID: "x", RefundInvoiceID: "root"}
	assert.ErrorIs(t, correction.CheckUnique(dup, corrections), domain.ErrDirectCorrectionExists)

	dup2 := &entity.Invoice{ID: "y", RefundInvoiceID: "root", SelectedCorrectionID: "c2"}
	assert.ErrorIs(t, correction.CheckUnique(dup2, corrections), domain.ErrCorrectionOfCorrectionExists)

	ok := &entity.Invoice{ID: "z", RefundInvoiceID: "root", SelectedCorrectionID: "c3"}
	assert.NoError(t, correction.CheckUnique(ok, corrections))
	assert.NoError(t, correction.CheckUnique(corrections[0], corrections), "no se compara consigo misma")
}

func TestCheckStateChange(t *testing.T) {
	assert.ErrorIs(t, correction.CheckStateChange(entity.InvoiceStateDraft, 1), domain.ErrInvoiceHasCorrections)
	assert.ErrorIs(t, correction.CheckStateChange(entity.InvoiceStateCancel, 2), domain.ErrInvoiceHasCorrections)
	assert.NoError(t, correction.CheckStateChange(entity.InvoiceStatePosted, 3))
	assert.NoError(t, correction.CheckStateChange(entity.InvoiceStateDraft, 0))
}
