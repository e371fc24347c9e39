package reporting_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/application/reporting"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
	"github.com/jhoicas/jpk-api/internal/testutil"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

type recordingArchiver struct {
	docs []reporting.Document
	err  error
}

func (a *recordingArchiver) Archive(_ context.Context, doc reporting.Document) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.docs = append(a.docs, doc)
	return "jpk/" + doc.CompanyID + "/" + doc.Kind + "/" + doc.Filename + ".xml", nil
}

type fixture struct {
	uc       *reporting.JPKUseCase
	jpkStore *testutil.InMemoryJPKStore
	decls    *testutil.InMemoryDeclarationStore
	archiver *recordingArchiver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	jpkStore := testutil.NewInMemoryJPKStore()
	_, err := jpkStore.UpsertTaxOffices(ctx, []entity.TaxOffice{{ID: "us-1", Code: "1471", Name: "Naczelnik Urzędu Skarbowego Warszawa-Mokotów"}})
	require.NoError(t, err)

	users := testutil.NewInMemoryUserStore()
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u1", CompanyID: "c1", Email: "ksiegowa@firma.pl", Role: entity.RoleContable}))

	decls := testutil.NewInMemoryDeclarationStore()
	archiver := &recordingArchiver{}
	repos := reporting.Repositories{
		JPK:          jpkStore,
		Declarations: decls,
		Companies: testutil.NewInMemoryCompanyStore(&entity.Company{
			ID: "c1", Name: "Firma Sp. z o.o.", VAT: "PL5260250274", Email: "biuro@firma.pl", TaxOfficeID: "us-1",
		}),
		Partners: testutil.NewInMemoryPartnerStore(&entity.Partner{ID: "p1", CompanyID: "c1", Name: "ACME GmbH", VAT: "DE123456789", CountryCode: "DE"}),
		Users:    users,
	}
	created := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	uc := reporting.NewJPKUseCase(repos, archiver, logger.Nop(), reporting.Options{SystemName: "jpk-api", CacheTTL: time.Minute}).
		WithClock(func() time.Time { return created })
	return &fixture{uc: uc, jpkStore: jpkStore, decls: decls, archiver: archiver}
}

func entry(markup, group string, isTax bool, balance string) jpk.Entry {
	return jpk.Entry{
		MoveID: "m1", MoveType: entity.MoveTypeOutInvoice, MoveName: "FV/2024/05/0001", JournalType: entity.JournalTypeSale,
		Section: entity.SectionSale, Markup: markup, V7Group: group, PartnerID: "p1", PartnerVAT: "DE123456789",
		PartnerName: "ACME GmbH", PartnerAddress: "Hauptstr. 1, 10115, Berlin",
		InvoiceDate: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), VATDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		SaleDocType: "FP", GTU: "GTU_12", IsTax: isTax, Balance: decimal.RequireFromString(balance),
	}
}

func decode(t *testing.T, resp *dto.JPKFileResponse) *etree.Element {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(resp.Content)
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))
	return doc.Root()
}

// ──────────────────────────────────────────────────────────────────────────────
// JPK_VAT(3)
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerateVAT_ArchivaYDevuelveDigest(t *testing.T) {
	f := newFixture(t)
	f.jpkStore.SetEntries(entity.DocTypeJPKVAT, []jpk.Entry{entry("K_19", "", false, "-100"), entry("K_20", "", true, "-23")})

	resp, err := f.uc.GenerateVAT(context.Background(), "c1", "u1", dto.GenerateVATRequest{
		DateFrom: "2024-05-01", DateTo: "2024-05-31", IncludeDrafts: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "jpk_vat_2024-05-01_2024-05-31.xml", resp.Filename)
	assert.Equal(t, 1, resp.SaleRows)
	assert.Equal(t, 0, resp.PurchaseRows)
	assert.Len(t, resp.Digest, 64)
	assert.Equal(t, "jpk/c1/vat/jpk_vat_2024-05-01_2024-05-31.xml", resp.ArchiveKey)

	root := decode(t, resp)
	assert.Equal(t, "ksiegowa@firma.pl", root.FindElement("tns:Podmiot1/tns:Email").Text())
	assert.Equal(t, "23.00", root.FindElement("tns:SprzedazCtrl/tns:PodatekNalezny").Text())

	require.Len(t, f.archiver.docs, 1)
	assert.Equal(t, reporting.KindVAT, f.archiver.docs[0].Kind)
	assert.Equal(t, resp.Digest, f.archiver.docs[0].Digest)

	q := f.jpkStore.Queries()
	require.Len(t, q, 1)
	assert.True(t, q[0].IncludeDrafts)
	assert.Equal(t, entity.DocTypeJPKVAT, q[0].DocTypeName)
}

func TestGenerateVAT_PeriodoInvertido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.GenerateVAT(context.Background(), "c1", "u1", dto.GenerateVATRequest{DateFrom: "2024-05-31", DateTo: "2024-05-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestGenerateVAT_FalloDelArchivoNoBloquea(t *testing.T) {
	f := newFixture(t)
	f.archiver.err = errors.New("s3 caído")

	resp, err := f.uc.GenerateVAT(context.Background(), "c1", "u1", dto.GenerateVATRequest{
		DateFrom: "2024-05-01", DateTo: "2024-05-31", Correction: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ArchiveKey)
	assert.Equal(t, "jpk_vat_2024-05-01_2024-05-31_korekta_1.xml", resp.Filename)
}

// ──────────────────────────────────────────────────────────────────────────────
// JPK_V7M y declaración
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerateV7M_GuardaDeclaracion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.jpkStore.SetEntries(entity.DocTypeJPKV7M12E, []jpk.Entry{
		entry("K_19", "P_19", false, "-100.40"),
		entry("K_20", "P_20", true, "-23.09"),
	})

	resp, err := f.uc.GenerateV7M(ctx, "c1", dto.GenerateV7MRequest{Version: entity.V7MVersion12E, Year: 2024, Month: 5})
	require.NoError(t, err)
	assert.Equal(t, "v7m_5_2024.xml", resp.Filename)
	assert.Equal(t, 1, resp.SaleRows)
	require.NotEmpty(t, resp.DeclarationID)

	root := decode(t, resp)
	assert.Equal(t, "1471", root.FindElement("tns:Naglowek/tns:KodUrzedu").Text())
	poz := root.FindElement("tns:Deklaracja/tns:PozycjeSzczegolowe")
	require.NotNil(t, poz)
	assert.Equal(t, "100", poz.FindElement("tns:P_19").Text())
	assert.Equal(t, "23", poz.FindElement("tns:P_20").Text())
	assert.Equal(t, "100", poz.FindElement("tns:P_37").Text())
	assert.Equal(t, "23", poz.FindElement("tns:P_51").Text())

	gtu := root.FindElement("tns:Ewidencja/tns:SprzedazWiersz/tns:GTU_12")
	require.NotNil(t, gtu, "el GTU de la línea llega al wiersz de ventas")
	assert.Equal(t, "1", gtu.Text())

	q := f.jpkStore.Queries()
	require.Len(t, q, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), q[0].DateFrom)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), q[0].DateTo)

	d, err := f.uc.GetDeclaration(ctx, "c1", resp.DeclarationID)
	require.NoError(t, err)
	assert.Equal(t, int64(23), d.Ints["p_51"])
	assert.Equal(t, 1, d.CelZlozenia)
	assert.Equal(t, resp.ArchiveKey, d.ArchiveKey)
}

type failingDeclarationStore struct {
	*testutil.InMemoryDeclarationStore
}

func (failingDeclarationStore) Create(context.Context, *entity.Declaration) error {
	return errors.New("insert fallido")
}

func TestGenerateV7M_FalloAlGuardarNoArchiva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.jpkStore.SetEntries(entity.DocTypeJPKV7M12E, []jpk.Entry{entry("K_19", "P_19", false, "-100.40")})
	uc := reporting.NewJPKUseCase(reporting.Repositories{
		JPK:          f.jpkStore,
		Declarations: failingDeclarationStore{testutil.NewInMemoryDeclarationStore()},
		Companies: testutil.NewInMemoryCompanyStore(&entity.Company{
			ID: "c1", Name: "Firma Sp. z o.o.", VAT: "PL5260250274", Email: "biuro@firma.pl", TaxOfficeID: "us-1",
		}),
		Partners: testutil.NewInMemoryPartnerStore(&entity.Partner{ID: "p1", CompanyID: "c1", Name: "ACME GmbH", VAT: "DE123456789", CountryCode: "DE"}),
		Users:    testutil.NewInMemoryUserStore(),
	}, f.archiver, logger.Nop(), reporting.Options{SystemName: "jpk-api"})

	_, err := uc.GenerateV7M(ctx, "c1", dto.GenerateV7MRequest{Version: entity.V7MVersion12E, Year: 2024, Month: 5})
	require.Error(t, err)
	assert.Empty(t, f.archiver.docs, "sin declaración guardada no se sube nada")
}

func TestGenerateV7M_SinUrzad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	companies := testutil.NewInMemoryCompanyStore(&entity.Company{ID: "c2", Name: "Bez urzędu", VAT: "5260250274"})
	uc := reporting.NewJPKUseCase(reporting.Repositories{
		JPK: f.jpkStore, Declarations: f.decls, Companies: companies,
		Partners: testutil.NewInMemoryPartnerStore(), Users: testutil.NewInMemoryUserStore(),
	}, nil, logger.Nop(), reporting.Options{})

	_, err := uc.GenerateV7M(ctx, "c2", dto.GenerateV7MRequest{Version: entity.V7MVersion12E, Year: 2024, Month: 5})
	assert.ErrorIs(t, err, domain.ErrTaxOfficeMissing)

	_, err = uc.GenerateV7M(ctx, "c2", dto.GenerateV7MRequest{Version: "9-9E", Year: 2024, Month: 5})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSchema)
}

func TestUpdateDeclaration_RecalculaYExporta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.jpkStore.SetEntries(entity.DocTypeJPKV7M12E, []jpk.Entry{entry("K_20", "P_20", true, "-23")})
	resp, err := f.uc.GenerateV7M(ctx, "c1", dto.GenerateV7MRequest{Version: entity.V7MVersion12E, Year: 2024, Month: 5, CelZlozenia: 2})
	require.NoError(t, err)
	assert.Equal(t, "v7m_5_2024_korekta.xml", resp.Filename)

	refund := entity.RefundP56
	updated, err := f.uc.UpdateDeclaration(ctx, "c1", resp.DeclarationID, dto.UpdateDeclarationRequest{
		Ints:  map[string]int64{"p_54": 5},
		Bools: map[string]bool{"p_59": true},
		P5558: &refund,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(23), updated.Ints["p_51"])
	assert.Equal(t, int64(-5), updated.Ints["p_62"], "p_62 = p_53 - p_54")
	assert.True(t, updated.Bools["p_59"])

	name, out, err := f.uc.DeclarationXML(ctx, "c1", resp.DeclarationID)
	require.NoError(t, err)
	assert.Equal(t, "v7m_5_2024_korekta.xml", name)
	assert.True(t, bytes.Contains(out, []byte("<tns:P_56>1</tns:P_56>")))
	assert.True(t, bytes.Contains(out, []byte("<tns:P_54>5</tns:P_54>")))
}

func TestUpdateDeclaration_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp, err := f.uc.GenerateV7M(ctx, "c1", dto.GenerateV7MRequest{Version: entity.V7MVersion12E, Year: 2024, Month: 5, CelZlozenia: 2})
	require.NoError(t, err)

	_, err = f.uc.UpdateDeclaration(ctx, "c1", resp.DeclarationID, dto.UpdateDeclarationRequest{Ints: map[string]int64{"p_37": 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "posición calculada")

	off := false
	_, err = f.uc.UpdateDeclaration(ctx, "c1", resp.DeclarationID, dto.UpdateDeclarationRequest{
		CzescDeklaracyjna: &off, CzescEwidencyjna: &off,
	})
	assert.ErrorIs(t, err, domain.ErrDeclarationSectionRequired)

	_, err = f.uc.GetDeclaration(ctx, "otra", resp.DeclarationID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Diccionarios
// ──────────────────────────────────────────────────────────────────────────────

func TestDiccionarios_SeedEImportacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.SeedDictionaries(ctx))
	dict, err := f.uc.Dictionaries(ctx)
	require.NoError(t, err)
	assert.Len(t, dict.DocumentTypes, 3)
	assert.Len(t, dict.GTU, 13)
	assert.Contains(t, dict.SaleDocTypes, "FP")

	offices, err := f.uc.TaxOffices(ctx)
	require.NoError(t, err)
	require.Len(t, offices, 1)

	xsd := `<?xml version="1.0" encoding="UTF-8"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema">
  <xsd:simpleType name="TKodUS">
    <xsd:restriction base="xsd:normalizedString">
      <xsd:enumeration value="0202"><xsd:annotation><xsd:documentation>URZĄD SKARBOWY W BOLESŁAWCU</xsd:documentation></xsd:annotation></xsd:enumeration>
      <xsd:enumeration value="1471"><xsd:annotation><xsd:documentation>URZĄD SKARBOWY WARSZAWA-MOKOTÓW</xsd:documentation></xsd:annotation></xsd:enumeration>
    </xsd:restriction>
  </xsd:simpleType>
</xsd:schema>`
	n, err := f.uc.ImportTaxOffices(ctx, strings.NewReader(xsd))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	offices, err = f.uc.TaxOffices(ctx)
	require.NoError(t, err)
	assert.Len(t, offices, 2, "la importación invalida la caché")
}
