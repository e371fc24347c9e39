package posting_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/posting"
)

var today = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func line() *entity.InvoiceLine {
	return &entity.InvoiceLine{Kind: entity.LineKindProduct, ProductID: "p1", Quantity: decimal.NewFromInt(1)}
}

func TestValidate_CompraSinReferenciaNiFecha(t *testing.T) {
	inv := &entity.Invoice{MoveType: entity.MoveTypeInInvoice, PartnerID: "v1", Lines: []*entity.InvoiceLine{line()}}

	err := posting.Validate(inv)

	assert.ErrorIs(t, err, domain.ErrVendorReferenceRequired)
	assert.ErrorIs(t, err, domain.ErrBillDateRequired)
}

func TestValidate_SinContratistaNiLineas(t *testing.T) {
	err := posting.Validate(&entity.Invoice{MoveType: entity.MoveTypeOutInvoice})
	assert.ErrorIs(t, err, domain.ErrPartnerRequired)
	assert.ErrorIs(t, err, domain.ErrNoLines)
}

func TestValidate_TotalNegativo(t *testing.T) {
	inv := &entity.Invoice{MoveType: entity.MoveTypeOutInvoice, PartnerID: "c", Lines: []*entity.InvoiceLine{line()}, AmountTotal: decimal.NewFromInt(-5)}
	assert.ErrorIs(t, posting.Validate(inv), domain.ErrNegativeTotal)

	inv.MoveType = entity.MoveTypeOutRefund
	assert.NoError(t, posting.Validate(inv), "las correcciones admiten total negativo")
}

func TestValidate_YaContabilizada(t *testing.T) {
	inv := &entity.Invoice{State: entity.InvoiceStatePosted}
	assert.ErrorIs(t, posting.Validate(inv), domain.ErrAlreadyPosted)
}

func TestPrepareDates_Venta(t *testing.T) {
	inv := &entity.Invoice{MoveType: entity.MoveTypeOutInvoice}
	posting.PrepareDates(inv, today)
	posting.AssignVATDate(inv)

	assert.Equal(t, today, inv.SaleDate)
	assert.Equal(t, today, inv.InvoiceDate)
	assert.Equal(t, today, inv.VATDate)
}

func TestPrepareDates_FechaVentaDesdeFactura(t *testing.T) {
	invDate := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	sale := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

	inv := &entity.Invoice{MoveType: entity.MoveTypeOutInvoice, InvoiceDate: invDate}
	posting.PrepareDates(inv, today)
	assert.Equal(t, invDate, inv.SaleDate)

	inv = &entity.Invoice{MoveType: entity.MoveTypeOutInvoice, InvoiceDate: invDate, SaleDate: sale}
	posting.PrepareDates(inv, today)
	posting.AssignVATDate(inv)
	assert.Equal(t, sale, inv.VATDate, "venta: fecha VAT = fecha de venta")
	assert.Equal(t, invDate, inv.Date)
}

func TestAssignVATDate_CompraUsaFechaContable(t *testing.T) {
	acc := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{MoveType: entity.MoveTypeInInvoice, InvoiceDate: today, SaleDate: today, Date: acc}
	posting.AssignVATDate(inv)
	assert.Equal(t, acc, inv.VATDate)
}

func TestApplyCreateDefaults_TPyGTU(t *testing.T) {
	l := line()
	inv := &entity.Invoice{MoveType: entity.MoveTypeOutInvoice, Lines: []*entity.InvoiceLine{l}}
	products := map[string]*entity.Product{"p1": {ID: "p1", GTU: "GTU_06"}}

	posting.ApplyCreateDefaults(inv, &entity.Partner{TP: true}, products)

	assert.True(t, inv.Flags.TP)
	assert.Equal(t, "GTU_06", l.GTU)

	purchase := &entity.Invoice{MoveType: entity.MoveTypeInInvoice, Lines: []*entity.InvoiceLine{line()}}
	posting.ApplyCreateDefaults(purchase, &entity.Partner{TP: true}, products)
	assert.False(t, purchase.Flags.TP)
	assert.Empty(t, purchase.Lines[0].GTU)
}
