//go:build integration

package postgres_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/application/invoicing"
	"github.com/jhoicas/jpk-api/internal/application/reporting"
	"github.com/jhoicas/jpk-api/internal/application/usecase"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
	"github.com/jhoicas/jpk-api/internal/infrastructure/archive"
	"github.com/jhoicas/jpk-api/internal/infrastructure/postgres"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

// newTestPool levanta un PostgreSQL efímero y aplica las migraciones embebidas.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("jpk_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "arrancar contenedor PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPoolFromDSN(ctx, dsn, false)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(pool))
	require.NoError(t, postgres.Migrate(pool), "segunda ejecución sin cambios")
	return pool
}

func TestPostgres_FacturaYCorreccion(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	log := logger.Nop()

	companyRepo := postgres.NewCompanyRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)

	company, err := usecase.NewCompanyUseCase(companyRepo, journalRepo, log).
		Create(ctx, dto.CreateCompanyRequest{Name: "Firma Sp. z o.o.", VAT: "5260250274", Lang: "pl_PL"})
	require.NoError(t, err)

	journals, err := journalRepo.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, journals, 3, "FV, FZ y PK")

	partner, err := usecase.NewPartnerUseCase(partnerRepo).Create(ctx, company.ID, dto.CreatePartnerRequest{
		Name: "Kontrahent S.A.", VAT: "PL1234563218", City: "Gdańsk", CountryCode: "PL",
	})
	require.NoError(t, err)

	repos := invoicing.Repositories{
		Invoices:   postgres.NewInvoiceRepository(pool),
		Journals:   journalRepo,
		Partners:   partnerRepo,
		Products:   postgres.NewProductRepository(pool),
		Companies:  companyRepo,
		Taxes:      postgres.NewTaxRepository(pool),
		Currencies: postgres.NewCurrencyRepository(pool),
	}
	invoices := invoicing.NewInvoiceUseCase(repos, postgres.NewTxRunner(pool), log, time.Minute).
		WithClock(func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) })
	catalog := invoicing.NewCatalogUseCase(repos, invoices, log)

	group, err := catalog.CreateTaxGroup(ctx, company.ID, dto.CreateTaxGroupRequest{Name: "VAT 23%", Sequence: 1})
	require.NoError(t, err)
	tax, err := catalog.CreateTax(ctx, company.ID, dto.CreateTaxRequest{
		Name: "23%", Amount: decimal.NewFromInt(23), TypeTaxUse: "sale", TaxGroupID: group.ID,
	})
	require.NoError(t, err)

	draft, err := invoices.Create(ctx, company.ID, dto.CreateInvoiceRequest{
		MoveType:  string(entity.MoveTypeOutInvoice),
		PartnerID: partner.ID,
		Lines: []dto.InvoiceLineRequest{{
			Name: "Usługa", Quantity: decimal.NewFromInt(2), PriceUnit: decimal.NewFromInt(100), TaxIDs: []string{tax.ID},
		}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(246).Equal(draft.AmountTotal))

	posted, err := invoices.Post(ctx, company.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "FV/2024/05/0001", posted.Name)
	assert.Equal(t, entity.InvoiceStatePosted, posted.State)

	qty := decimal.NewFromInt(1)
	corr, err := invoices.CreateCorrection(ctx, company.ID, posted.ID, dto.CreateCorrectionRequest{
		Reason: "Zwrot jednej sztuki",
		Lines:  []dto.CorrectedLineRequest{{Index: 0, Quantity: &qty}},
	})
	require.NoError(t, err)
	assert.Equal(t, posted.ID, corr.RefundInvoiceID)

	_, err = invoices.CreateCorrection(ctx, company.ID, posted.ID, dto.CreateCorrectionRequest{Reason: "otra"})
	assert.ErrorIs(t, err, domain.ErrDirectCorrectionExists)

	_, err = invoices.ResetToDraft(ctx, company.ID, posted.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceHasCorrections)

	reloaded, err := invoices.Get(ctx, company.ID, posted.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CorrectionCount)
}

func TestPostgres_NumeracionDiario(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	companyRepo := postgres.NewCompanyRepository(pool)
	company := &entity.Company{Name: "Firma", VAT: "PL5260250274", CountryCode: "PL", CurrencyCode: "PLN", Status: "active"}
	require.NoError(t, companyRepo.Create(ctx, company))

	journalRepo := postgres.NewJournalRepository(pool)
	j := &entity.Journal{CompanyID: company.ID, Code: "FV", Name: "Sprzedaż", Type: entity.JournalTypeSale, Prefix: "FV", IsDefault: true}
	require.NoError(t, journalRepo.Create(ctx, j))

	n1, err := journalRepo.NextNumber(ctx, j.ID)
	require.NoError(t, err)
	n2, err := journalRepo.NextNumber(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n1)
	assert.Equal(t, int64(2), n2)

	err = journalRepo.Create(ctx, &entity.Journal{CompanyID: company.ID, Code: "FV", Name: "Copia", Type: entity.JournalTypeSale, Prefix: "FV"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	missing, err := journalRepo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_DiccionariosYDeclaracion(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	jpkRepo := postgres.NewJPKRepository(pool)
	n, err := jpkRepo.UpsertTaxOffices(ctx, []entity.TaxOffice{
		{Code: "1471", Name: "Naczelnik Urzędu Skarbowego Warszawa-Mokotów"},
		{Code: "0202", Name: "Naczelnik Urzędu Skarbowego w Bolesławcu"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = jpkRepo.UpsertTaxOffices(ctx, []entity.TaxOffice{{Code: "1471", Name: "Urząd Skarbowy Warszawa-Mokotów"}})
	require.NoError(t, err)
	offices, err := jpkRepo.ListTaxOffices(ctx)
	require.NoError(t, err)
	assert.Len(t, offices, 2, "el upsert por código no duplica")

	companyRepo := postgres.NewCompanyRepository(pool)
	company := &entity.Company{Name: "Firma", VAT: "PL5260250274", CountryCode: "PL", CurrencyCode: "PLN", Status: "active"}
	require.NoError(t, companyRepo.Create(ctx, company))

	declRepo := postgres.NewDeclarationRepository(pool)
	decl := jpk.NewDeclaration("1-2E", 2024, 5, 1, nil)
	decl.CompanyID = company.ID
	decl.SourceXML = []byte("<JPK/>")
	decl.Ints["p_54"] = 5
	decl.Bools["p_59"] = true
	require.NoError(t, declRepo.Create(ctx, decl))

	got, err := declRepo.GetByID(ctx, decl.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.Ints["p_54"])
	assert.True(t, got.Bools["p_59"])
	assert.Equal(t, "<JPK/>", string(got.SourceXML))

	list, err := declRepo.ListByCompany(ctx, company.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPostgres_GTUDelProductoLlegaAlV7M(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	log := logger.Nop()

	jpkRepo := postgres.NewJPKRepository(pool)
	_, err := jpkRepo.UpsertTaxOffices(ctx, []entity.TaxOffice{{Code: "1471", Name: "Naczelnik Urzędu Skarbowego Warszawa-Mokotów"}})
	require.NoError(t, err)
	offices, err := jpkRepo.ListTaxOffices(ctx)
	require.NoError(t, err)
	require.Len(t, offices, 1)

	companyRepo := postgres.NewCompanyRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	company, err := usecase.NewCompanyUseCase(companyRepo, journalRepo, log).Create(ctx, dto.CreateCompanyRequest{
		Name: "Firma Sp. z o.o.", VAT: "5260250274", Lang: "pl_PL", TaxOfficeID: offices[0].ID,
	})
	require.NoError(t, err)
	partner, err := usecase.NewPartnerUseCase(partnerRepo).Create(ctx, company.ID, dto.CreatePartnerRequest{
		Name: "Kontrahent S.A.", VAT: "PL1234563218", City: "Gdańsk", CountryCode: "PL",
	})
	require.NoError(t, err)

	v7mDocType := "6f1c3f0e-4d3b-4b8e-9b0a-000000000002"
	k19 := &entity.AccountTag{Name: "K_19"}
	k20 := &entity.AccountTag{Name: "K_20"}
	require.NoError(t, jpkRepo.CreateAccountTag(ctx, k19))
	require.NoError(t, jpkRepo.CreateAccountTag(ctx, k20))
	require.NoError(t, jpkRepo.CreateJPKAccountTag(ctx, &entity.JPKAccountTag{
		AccountTagID: k19.ID, DocumentTypeID: v7mDocType, Markup: "K_19", Section: entity.SectionSale, V7Group: "P_19",
	}))
	require.NoError(t, jpkRepo.CreateJPKAccountTag(ctx, &entity.JPKAccountTag{
		AccountTagID: k20.ID, DocumentTypeID: v7mDocType, Markup: "K_20", Section: entity.SectionSale, V7Group: "P_20",
	}))

	repos := invoicing.Repositories{
		Invoices:   postgres.NewInvoiceRepository(pool),
		Journals:   journalRepo,
		Partners:   partnerRepo,
		Products:   postgres.NewProductRepository(pool),
		Companies:  companyRepo,
		Taxes:      postgres.NewTaxRepository(pool),
		Currencies: postgres.NewCurrencyRepository(pool),
	}
	invoices := invoicing.NewInvoiceUseCase(repos, postgres.NewTxRunner(pool), log, time.Minute).
		WithClock(func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) })
	catalog := invoicing.NewCatalogUseCase(repos, invoices, log)

	group, err := catalog.CreateTaxGroup(ctx, company.ID, dto.CreateTaxGroupRequest{Name: "VAT 23%", Sequence: 1})
	require.NoError(t, err)
	tax, err := catalog.CreateTax(ctx, company.ID, dto.CreateTaxRequest{
		Name: "23%", Amount: decimal.NewFromInt(23), TypeTaxUse: "sale", TaxGroupID: group.ID,
		InvoiceBaseTagIDs: []string{k19.ID}, InvoiceTaxTagIDs: []string{k20.ID},
	})
	require.NoError(t, err)
	product, err := catalog.CreateProduct(ctx, company.ID, dto.CreateProductRequest{
		SKU: "SRV-1", Name: "Usługa", Price: decimal.NewFromInt(100), TaxIDs: []string{tax.ID}, GTU: "GTU_12",
	})
	require.NoError(t, err)
	assert.Equal(t, "GTU_12", product.GTU)

	draft, err := invoices.Create(ctx, company.ID, dto.CreateInvoiceRequest{
		MoveType:    string(entity.MoveTypeOutInvoice),
		PartnerID:   partner.ID,
		InvoiceDate: "2024-05-15",
		Lines:       []dto.InvoiceLineRequest{{ProductID: product.ID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	_, err = invoices.Post(ctx, company.ID, draft.ID)
	require.NoError(t, err)

	jpkUC := reporting.NewJPKUseCase(reporting.Repositories{
		JPK:          jpkRepo,
		Declarations: postgres.NewDeclarationRepository(pool),
		Companies:    companyRepo,
		Partners:     partnerRepo,
		Users:        postgres.NewUserRepository(pool),
	}, archive.NopArchiver{}, log, reporting.Options{SystemName: "jpk-api"})
	resp, err := jpkUC.GenerateV7M(ctx, company.ID, dto.GenerateV7MRequest{Version: entity.V7MVersion12E, Year: 2024, Month: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SaleRows)

	raw, err := base64.StdEncoding.DecodeString(resp.Content)
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))
	gtu := doc.Root().FindElement("tns:Ewidencja/tns:SprzedazWiersz/tns:GTU_12")
	require.NotNil(t, gtu, "el GTU del producto se marca en el wiersz")
	assert.Equal(t, "1", gtu.Text())
}
