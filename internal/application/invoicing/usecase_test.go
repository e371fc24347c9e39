package invoicing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/application/invoicing"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/testutil"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

const (
	companyID = "11111111-1111-1111-1111-111111111111"
	partnerID = "22222222-2222-2222-2222-222222222222"
	productID = "33333333-3333-3333-3333-333333333333"
	vat23     = "44444444-4444-4444-4444-444444444444"
	group23   = "55555555-5555-5555-5555-555555555555"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	uc         *invoicing.InvoiceUseCase
	catalog    *invoicing.CatalogUseCase
	invoices   *testutil.InMemoryInvoiceStore
	taxes      *testutil.InMemoryTaxStore
	currencies *testutil.InMemoryCurrencyStore
	tx         *testutil.TxRunner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	invoices := testutil.NewInMemoryInvoiceStore()
	journals := testutil.NewInMemoryJournalStore()
	taxes := testutil.NewInMemoryTaxStore()
	products := testutil.NewInMemoryProductStore()
	currencies := testutil.NewInMemoryCurrencyStore(
		entity.Currency{Code: "PLN", Symbol: "zł", Position: entity.SymbolAfter, Digits: 2},
		entity.Currency{Code: "EUR", Symbol: "€", Position: entity.SymbolAfter, Digits: 2},
	)
	companies := testutil.NewInMemoryCompanyStore(&entity.Company{
		ID: companyID, Name: "Firma Sp. z o.o.", VAT: "PL5261040828", CurrencyCode: "PLN", Lang: "pl_PL",
	})
	partners := testutil.NewInMemoryPartnerStore(
		&entity.Partner{ID: partnerID, CompanyID: companyID, Name: "Kontrahent S.A.", VAT: "PL1234563218",
			Street: "ul. Długa 5", City: "Gdańsk", Zip: "80-001", CountryCode: "PL", TP: true},
		&entity.Partner{ID: "otro", CompanyID: "otra-empresa", Name: "Ajeno"},
	)

	require.NoError(t, taxes.CreateGroup(ctx, &entity.TaxGroup{ID: group23, CompanyID: companyID, Name: "VAT 23%", Sequence: 1}))
	require.NoError(t, taxes.CreateTax(ctx, &entity.Tax{ID: vat23, CompanyID: companyID, Name: "23%", Amount: d("23"),
		TypeTaxUse: entity.TaxUseSale, TaxGroupID: group23}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: productID, CompanyID: companyID, SKU: "USL-1",
		Name: "Usługa", Price: d("100"), TaxIDs: []string{vat23}, GTU: "GTU_12"}))
	require.NoError(t, journals.Create(ctx, &entity.Journal{CompanyID: companyID, Code: "FV", Name: "Sprzedaż",
		Type: entity.JournalTypeSale, Prefix: "FV", IsDefault: true}))
	require.NoError(t, journals.Create(ctx, &entity.Journal{CompanyID: companyID, Code: "FZ", Name: "Zakupy",
		Type: entity.JournalTypePurchase, Prefix: "FZ", IsDefault: true}))

	repos := invoicing.Repositories{
		Invoices:   invoices,
		Journals:   journals,
		Partners:   partners,
		Products:   products,
		Companies:  companies,
		Taxes:      taxes,
		Currencies: currencies,
	}
	tx := &testutil.TxRunner{Invoices: invoices, Journals: journals}
	clock := func() time.Time { return time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC) }
	uc := invoicing.NewInvoiceUseCase(repos, tx, logger.Nop(), time.Minute).WithClock(clock).WithDefaultLang("pl_PL")
	return &fixture{
		uc:         uc,
		catalog:    invoicing.NewCatalogUseCase(repos, uc, logger.Nop()),
		invoices:   invoices,
		taxes:      taxes,
		currencies: currencies,
		tx:         tx,
	}
}

func saleRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		MoveType:    string(entity.MoveTypeOutInvoice),
		PartnerID:   partnerID,
		InvoiceDate: "2024-05-15",
		Lines:       []dto.InvoiceLineRequest{{ProductID: productID, Quantity: d("2")}},
	}
}

func (f *fixture) postedSale(t *testing.T) *dto.InvoiceResponse {
	t.Helper()
	ctx := context.Background()
	inv, err := f.uc.Create(ctx, companyID, saleRequest())
	require.NoError(t, err)
	posted, err := f.uc.Post(ctx, companyID, inv.ID)
	require.NoError(t, err)
	return posted
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_BorradorConDefaults(t *testing.T) {
	f := newFixture(t)

	inv, err := f.uc.Create(context.Background(), companyID, saleRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStateDraft, inv.State)
	assert.Equal(t, "PLN", inv.CurrencyCode)
	assert.True(t, inv.Flags.TP, "TP se copia del contratista en ventas")
	assert.True(t, d("200").Equal(inv.AmountUntaxed))
	assert.True(t, d("46").Equal(inv.AmountTax))
	assert.True(t, d("246").Equal(inv.AmountTotal))

	var kinds []string
	for _, l := range inv.Lines {
		kinds = append(kinds, l.Kind)
	}
	assert.ElementsMatch(t, []string{entity.LineKindProduct, entity.LineKindTax, entity.LineKindTerm}, kinds)
	assert.Equal(t, "Usługa", inv.Lines[0].Name)
	assert.Equal(t, "GTU_12", inv.Lines[0].GTU, "GTU por defecto del producto")
	assert.True(t, d("100").Equal(inv.Lines[0].PriceUnit))
}

func TestCreate_ContratistaDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	req := saleRequest()
	req.PartnerID = "otro"

	_, err := f.uc.Create(context.Background(), companyID, req)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate_RechazaCorreccionDirecta(t *testing.T) {
	f := newFixture(t)
	req := saleRequest()
	req.MoveType = string(entity.MoveTypeOutRefund)

	_, err := f.uc.Create(context.Background(), companyID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ImpuestoDesconocido(t *testing.T) {
	f := newFixture(t)
	req := saleRequest()
	req.Lines = []dto.InvoiceLineRequest{{Name: "x", Quantity: d("1"), PriceUnit: d("10"), TaxIDs: []string{"nope"}}}

	_, err := f.uc.Create(context.Background(), companyID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Post
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_NumeraYFijaFechaVAT(t *testing.T) {
	f := newFixture(t)

	posted := f.postedSale(t)

	assert.Equal(t, entity.InvoiceStatePosted, posted.State)
	assert.Equal(t, "FV/2024/05/0001", posted.Name)
	assert.Equal(t, "2024-05-15", posted.SaleDate, "la fecha de venta toma la de factura")
	assert.Equal(t, "2024-05-15", posted.VATDate)
	assert.Equal(t, "2024-05-15", posted.Date)
	assert.Equal(t, 1, f.tx.Calls)

	second := f.postedSale(t)
	assert.Equal(t, "FV/2024/05/0002", second.Name)
}

func TestPost_VentaSinFechaUsaHoy(t *testing.T) {
	f := newFixture(t)
	req := saleRequest()
	req.InvoiceDate = ""
	inv, err := f.uc.Create(context.Background(), companyID, req)
	require.NoError(t, err)

	posted, err := f.uc.Post(context.Background(), companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-20", posted.InvoiceDate)
	assert.Equal(t, "2024-05-20", posted.SaleDate)
}

func TestPost_CompraSinReferenciaNiFecha(t *testing.T) {
	f := newFixture(t)
	req := saleRequest()
	req.MoveType = string(entity.MoveTypeInInvoice)
	req.InvoiceDate = ""
	inv, err := f.uc.Create(context.Background(), companyID, req)
	require.NoError(t, err)

	_, err = f.uc.Post(context.Background(), companyID, inv.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVendorReferenceRequired)
	assert.ErrorIs(t, err, domain.ErrBillDateRequired)
	assert.Zero(t, f.tx.Calls, "no se abre transacción si la validación falla")
}

func TestPost_DosVeces(t *testing.T) {
	f := newFixture(t)
	posted := f.postedSale(t)

	_, err := f.uc.Post(context.Background(), companyID, posted.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyPosted)
}

func TestPost_MonedaExtranjeraUsaTipoALaFechaDeVenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := saleRequest()
	req.CurrencyCode = "EUR"
	req.SaleDate = "2024-05-10"

	_, err := f.uc.Create(ctx, companyID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin tipo de cambio")

	_, err = f.catalog.CreateRate(ctx, companyID, dto.CreateRateRequest{CurrencyCode: "EUR", Date: "2024-05-09", Rate: d("4.30")})
	require.NoError(t, err)
	_, err = f.catalog.CreateRate(ctx, companyID, dto.CreateRateRequest{CurrencyCode: "EUR", Date: "2024-05-14", Rate: d("4.50")})
	require.NoError(t, err)

	inv, err := f.uc.Create(ctx, companyID, req)
	require.NoError(t, err)
	posted, err := f.uc.Post(ctx, companyID, inv.ID)
	require.NoError(t, err)

	assert.True(t, d("246").Equal(posted.AmountTotal))
	assert.True(t, d("1057.80").Equal(posted.AmountTotalSigned), "246 EUR x 4.30: %s", posted.AmountTotalSigned)
}

func TestPost_MonedaExtranjeraSinFechasUsaTipoDeHoy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.catalog.CreateRate(ctx, companyID, dto.CreateRateRequest{CurrencyCode: "EUR", Date: "2024-05-09", Rate: d("4.30")})
	require.NoError(t, err)
	_, err = f.catalog.CreateRate(ctx, companyID, dto.CreateRateRequest{CurrencyCode: "EUR", Date: "2024-05-14", Rate: d("4.50")})
	require.NoError(t, err)

	req := saleRequest()
	req.CurrencyCode = "EUR"
	req.InvoiceDate = ""
	req.Date = "2024-05-10"
	inv, err := f.uc.Create(ctx, companyID, req)
	require.NoError(t, err)

	posted, err := f.uc.Post(ctx, companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-20", posted.SaleDate)
	assert.True(t, d("1107").Equal(posted.AmountTotalSigned), "tipo a la fecha de venta fijada al contabilizar: %s", posted.AmountTotalSigned)
}

// ──────────────────────────────────────────────────────────────────────────────
// Correcciones y cambios de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateCorrection_DirectaUnica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.postedSale(t)

	c, err := f.uc.CreateCorrection(ctx, companyID, root.ID, dto.CreateCorrectionRequest{
		Reason: "rabat",
		Lines:  []dto.CorrectedLineRequest{{Index: 0, Quantity: ptr(d("1"))}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.MoveTypeOutRefund), c.MoveType)
	assert.Equal(t, root.ID, c.RefundInvoiceID)
	assert.Equal(t, "2024-05-20", c.InvoiceDate)
	assert.True(t, d("100").Equal(c.AmountUntaxed), "200 originales menos 100 corregidos")

	_, err = f.uc.CreateCorrection(ctx, companyID, root.ID, dto.CreateCorrectionRequest{Reason: "otra"})
	assert.ErrorIs(t, err, domain.ErrDirectCorrectionExists)

	_, err = f.uc.ResetToDraft(ctx, companyID, root.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceHasCorrections)
	_, err = f.uc.Cancel(ctx, companyID, root.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceHasCorrections)

	got, err := f.uc.Get(ctx, companyID, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CorrectionCount)
}

func TestCreateCorrection_DeCorreccion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.postedSale(t)

	first, err := f.uc.CreateCorrection(ctx, companyID, root.ID, dto.CreateCorrectionRequest{Reason: "rabat"})
	require.NoError(t, err)

	second, err := f.uc.CreateCorrection(ctx, companyID, first.ID, dto.CreateCorrectionRequest{Reason: "korekta korekty"})
	require.NoError(t, err)
	assert.Equal(t, root.ID, second.RefundInvoiceID, "apunta siempre a la raíz")
	assert.Equal(t, first.ID, second.SelectedCorrectionID)

	_, err = f.uc.CreateCorrection(ctx, companyID, root.ID, dto.CreateCorrectionRequest{
		SelectedCorrectionID: first.ID, Reason: "duplicada",
	})
	assert.ErrorIs(t, err, domain.ErrCorrectionOfCorrectionExists)
}

func TestCreateCorrection_FacturaEnBorrador(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.Create(context.Background(), companyID, saleRequest())
	require.NoError(t, err)

	_, err = f.uc.CreateCorrection(context.Background(), companyID, inv.ID, dto.CreateCorrectionRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotCorrectable)
}

func TestCreateCorrection_IndiceInexistente(t *testing.T) {
	f := newFixture(t)
	root := f.postedSale(t)

	_, err := f.uc.CreateCorrection(context.Background(), companyID, root.ID, dto.CreateCorrectionRequest{
		Reason: "x",
		Lines:  []dto.CorrectedLineRequest{{Index: 5, Quantity: ptr(d("1"))}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResetToDraft_SinCorrecciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	posted := f.postedSale(t)

	draft, err := f.uc.ResetToDraft(ctx, companyID, posted.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStateDraft, draft.State)
	assert.Equal(t, posted.Name, draft.Name, "conserva el número asignado")

	_, err = f.uc.ResetToDraft(ctx, companyID, posted.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resúmenes y rejestr
// ──────────────────────────────────────────────────────────────────────────────

func TestTaxTotals_Factura(t *testing.T) {
	f := newFixture(t)
	posted := f.postedSale(t)

	totals, err := f.uc.TaxTotals(context.Background(), companyID, posted.ID, false)
	require.NoError(t, err)

	assert.True(t, d("246").Equal(totals.AmountTotal))
	assert.True(t, d("46").Equal(totals.TaxAmountInPLN))
	groups := totals.GroupsBySubtotal["Untaxed Amount"]
	require.Len(t, groups, 1)
	assert.Equal(t, "VAT 23%", groups[0].Name)
	assert.True(t, d("200").Equal(groups[0].BaseAmount))
}

func TestTaxTotals_CorreccionConRaizDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.postedSale(t)
	c, err := f.uc.CreateCorrection(ctx, companyID, root.ID, dto.CreateCorrectionRequest{Reason: "rabat"})
	require.NoError(t, err)

	stored, err := f.invoices.GetByID(ctx, root.ID)
	require.NoError(t, err)
	stored.CompanyID = "otra-empresa"
	require.NoError(t, f.invoices.Update(ctx, stored))

	_, err = f.uc.TaxTotals(ctx, companyID, c.ID, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTaxTotals_UsaCache(t *testing.T) {
	f := newFixture(t)
	posted := f.postedSale(t)
	loads := f.taxes.Loads

	_, err := f.uc.TaxTotals(context.Background(), companyID, posted.ID, false)
	require.NoError(t, err)
	assert.Equal(t, loads, f.taxes.Loads, "los impuestos salen de la caché")

	_, err = f.catalog.CreateTaxGroup(context.Background(), companyID, dto.CreateTaxGroupRequest{Name: "VAT 8%", Sequence: 2})
	require.NoError(t, err)
	_, err = f.uc.TaxTotals(context.Background(), companyID, posted.ID, false)
	require.NoError(t, err)
	assert.Equal(t, loads+1, f.taxes.Loads, "crear un grupo invalida la caché")
}

func TestSummary_CorreccionIncluyeCambio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.postedSale(t)
	c, err := f.uc.CreateCorrection(ctx, companyID, root.ID, dto.CreateCorrectionRequest{
		Reason: "rabat",
		Lines:  []dto.CorrectedLineRequest{{Index: 0, Quantity: ptr(d("1"))}},
	})
	require.NoError(t, err)

	rootSummary, err := f.uc.Summary(ctx, companyID, root.ID)
	require.NoError(t, err)
	assert.Nil(t, rootSummary.Corrected)

	summary, err := f.uc.Summary(ctx, companyID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Summary)
	require.NotNil(t, summary.Corrected)
}

func TestRegister_SignosYGrupos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.postedSale(t)
	c, err := f.uc.CreateCorrection(ctx, companyID, root.ID, dto.CreateCorrectionRequest{
		Reason: "rabat",
		Date:   "2024-05-18",
		Lines:  []dto.CorrectedLineRequest{{Index: 0, Quantity: ptr(d("1"))}},
	})
	require.NoError(t, err)
	_, err = f.uc.Post(ctx, companyID, c.ID)
	require.NoError(t, err)

	report, err := f.uc.Register(ctx, companyID, dto.RegisterReportRequest{DateFrom: "2024-05-01", DateTo: "2024-05-31"})
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, []string{"VAT 23%"}, report.Groups)

	byID := map[string]dto.RegisterRow{}
	for _, r := range report.Rows {
		byID[r.InvoiceID] = r
	}
	inv := byID[root.ID]
	assert.True(t, d("200").Equal(inv.NetPLN))
	assert.True(t, d("46").Equal(inv.GroupsPLN["VAT 23%"]))
	assert.True(t, d("246").Equal(inv.GrossPLN))
	assert.Equal(t, "Kontrahent S.A.", inv.PartnerName)
	assert.Equal(t, "2024-05-15", inv.DateDue, "sin vencimiento se usa la fecha de factura")

	corr := byID[c.ID]
	assert.Equal(t, root.Name, corr.CorrectionOf)
	assert.True(t, d("-100").Equal(corr.NetPLN), "la corrección reduce: %s", corr.NetPLN)
	assert.True(t, d("-23").Equal(corr.GroupsPLN["VAT 23%"]))
	assert.True(t, d("-123").Equal(corr.GrossPLN))
}

func TestRegister_FiltraCompras(t *testing.T) {
	f := newFixture(t)
	f.postedSale(t)

	report, err := f.uc.Register(context.Background(), companyID, dto.RegisterReportRequest{
		DateFrom: "2024-05-01", DateTo: "2024-05-31", Kind: entity.JournalTypePurchase,
	})
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
}

func TestGet_EmpresaAjena(t *testing.T) {
	f := newFixture(t)
	posted := f.postedSale(t)

	_, err := f.uc.Get(context.Background(), "otra-empresa", posted.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.uc.Get(context.Background(), companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ptr[T any](v T) *T { return &v }
