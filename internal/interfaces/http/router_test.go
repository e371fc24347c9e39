package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/application/auth"
	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/application/invoicing"
	"github.com/jhoicas/jpk-api/internal/application/reporting"
	"github.com/jhoicas/jpk-api/internal/application/usecase"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/infrastructure/archive"
	apphttp "github.com/jhoicas/jpk-api/internal/interfaces/http"
	"github.com/jhoicas/jpk-api/internal/testutil"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre stores en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildRouterApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()

	companies := testutil.NewInMemoryCompanyStore()
	users := testutil.NewInMemoryUserStore()
	partners := testutil.NewInMemoryPartnerStore()
	journals := testutil.NewInMemoryJournalStore()
	invoices := testutil.NewInMemoryInvoiceStore()
	modules := testutil.NewInMemoryModuleStore()

	invoiceUC := invoicing.NewInvoiceUseCase(invoicing.Repositories{
		Invoices:   invoices,
		Journals:   journals,
		Partners:   partners,
		Products:   testutil.NewInMemoryProductStore(),
		Companies:  companies,
		Taxes:      testutil.NewInMemoryTaxStore(),
		Currencies: testutil.NewInMemoryCurrencyStore(entity.Currency{Code: "PLN", Symbol: "zł", Position: entity.SymbolAfter, Digits: 2}),
	}, &testutil.TxRunner{Invoices: invoices, Journals: journals}, log, time.Minute)

	jpkUC := reporting.NewJPKUseCase(reporting.Repositories{
		JPK:          testutil.NewInMemoryJPKStore(),
		Declarations: testutil.NewInMemoryDeclarationStore(),
		Companies:    companies,
		Partners:     partners,
		Users:        users,
	}, archive.NopArchiver{}, log, reporting.Options{SystemName: "jpk-api"})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    auth.NewAuthUseCase(users, companies, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer}, log),
		UserUC:    usecase.NewUserUseCase(users),
		CompanyUC: usecase.NewCompanyUseCase(companies, journals, log),
		PartnerUC: usecase.NewPartnerUseCase(partners),
		Modules:   usecase.NewModuleService(modules),
		InvoiceUC: invoiceUC,
		CatalogUC: invoicing.NewCatalogUseCase(invoicing.Repositories{}, invoiceUC, log),
		JPKUC:     jpkUC,
		JWTSecret: testJWTSecret,
		Log:       log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// bootstrap crea empresa y usuario y devuelve el token de login.
func bootstrap(t *testing.T, app *fiber.App, role string) (string, dto.CompanyResponse) {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/companies", "", dto.CreateCompanyRequest{Name: "Firma Sp. z o.o.", VAT: "5260250274"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	company := decodeJSON[dto.CompanyResponse](t, resp)

	resp = call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: role + "@firma.pl", Password: "tajne-haslo", CompanyID: company.ID, Role: role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: role + "@firma.pl", Password: "tajne-haslo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeJSON[dto.LoginResponse](t, resp)
	return login.Token, company
}

func enableModule(t *testing.T, app *fiber.App, token, module string) {
	t.Helper()
	resp := call(t, app, http.MethodPut, "/api/companies/me/modules", token, dto.UpsertModuleRequest{ModuleName: module, IsActive: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y empresa
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_RegistroLoginYPerfil(t *testing.T) {
	app := buildRouterApp(t)
	token, company := bootstrap(t, app, entity.RoleAdmin)

	me := decodeJSON[dto.UserResponse](t, call(t, app, http.MethodGet, "/api/auth/me", token, nil))
	assert.Equal(t, "admin@firma.pl", me.Email)
	assert.Equal(t, company.ID, me.CompanyID)

	got := decodeJSON[dto.CompanyResponse](t, call(t, app, http.MethodGet, "/api/companies/me", token, nil))
	assert.Equal(t, "PLN", got.CurrencyCode)
	assert.Equal(t, "PL", got.CountryCode)
}

func TestRouter_LoginIncorrecto_Retorna401(t *testing.T) {
	app := buildRouterApp(t)
	bootstrap(t, app, entity.RoleAdmin)

	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@firma.pl", Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@firma.pl", Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "usuario inexistente responde igual que clave incorrecta")
	resp.Body.Close()
}

func TestRouter_EmpresaNIPInvalido_Retorna400(t *testing.T) {
	app := buildRouterApp(t)
	resp := call(t, app, http.MethodPost, "/api/companies", "", dto.CreateCompanyRequest{Name: "Firma", VAT: "5260250275"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestRouter_EmpresaDuplicada_Retorna409(t *testing.T) {
	app := buildRouterApp(t)
	bootstrap(t, app, entity.RoleAdmin)

	resp := call(t, app, http.MethodPost, "/api/companies", "", dto.CreateCompanyRequest{Name: "Copia", VAT: "5260250274"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decodeJSON[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_BodyInvalido_Retorna400(t *testing.T) {
	app := buildRouterApp(t)
	resp := call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "no-es-email", Password: "corta"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "Email")
}

// ──────────────────────────────────────────────────────────────────────────────
// Módulos y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ModuloInvoicingDesactivado_Retorna403(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleAdmin)

	resp := call(t, app, http.MethodGet, "/api/invoices", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DISABLED", decodeJSON[dto.ErrorResponse](t, resp).Code)

	enableModule(t, app, token, entity.ModuleInvoicing)

	list := decodeJSON[dto.InvoiceListResponse](t, call(t, app, http.MethodGet, "/api/invoices", token, nil))
	assert.Empty(t, list.Items)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestRouter_ModuloInvoicingNoHabilitaJPK(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleAdmin)
	enableModule(t, app, token, entity.ModuleInvoicing)

	resp := call(t, app, http.MethodGet, "/api/jpk/dictionaries", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_AuditorNoCreaContratistas(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleAuditor)

	resp := call(t, app, http.MethodPost, "/api/partners", token, dto.CreatePartnerRequest{Name: "ACME"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeJSON[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodGet, "/api/partners", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "auditor puede leer")
	resp.Body.Close()
}

func TestRouter_ContratistaCRUD(t *testing.T) {
	app := buildRouterApp(t)
	token, company := bootstrap(t, app, entity.RoleContable)

	resp := call(t, app, http.MethodPost, "/api/partners", token, dto.CreatePartnerRequest{Name: "ACME GmbH", VAT: "DE123456789", CountryCode: "DE"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeJSON[dto.PartnerResponse](t, resp)
	assert.Equal(t, company.ID, created.CompanyID)
	assert.Equal(t, "DE", created.TINCountry)

	tp := true
	updated := decodeJSON[dto.PartnerResponse](t, call(t, app, http.MethodPatch, "/api/partners/"+created.ID, token, dto.UpdatePartnerRequest{TP: &tp}))
	assert.True(t, updated.TP)

	resp = call(t, app, http.MethodGet, "/api/partners/no-existe", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeJSON[dto.ErrorResponse](t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas y JPK
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ProductoConCodigoGTU(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleContable)
	enableModule(t, app, token, entity.ModuleInvoicing)

	resp := call(t, app, http.MethodPost, "/api/products", token, dto.CreateProductRequest{SKU: "SRV-1", Name: "Usługa", GTU: "GTU_12"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "GTU_12", decodeJSON[dto.ProductResponse](t, resp).GTU)

	for _, gtu := range []string{"GTU_14", "44444444-4444-4444-4444-444444444444"} {
		resp = call(t, app, http.MethodPost, "/api/products", token, dto.CreateProductRequest{SKU: "SRV-2", Name: "Usługa", GTU: gtu})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, gtu)
		body := decodeJSON[dto.ErrorResponse](t, resp)
		assert.Equal(t, "VALIDATION", body.Code)
		assert.Contains(t, body.Message, "GTU")
	}
}

func TestRouter_FacturaInexistente_Retorna404(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleContable)
	enableModule(t, app, token, entity.ModuleInvoicing)

	resp := call(t, app, http.MethodPost, "/api/invoices/44444444-4444-4444-4444-444444444444/post", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_RegistroExigeFechas(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleAuditor)
	enableModule(t, app, token, entity.ModuleInvoicing)

	resp := call(t, app, http.MethodGet, "/api/invoices/register?kind=sale", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/invoices/register?date_from=2024-05-01&date_to=2024-05-31", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON[dto.RegisterReportResponse](t, resp)
	assert.Empty(t, out.Rows)
}

func TestRouter_JPKPeriodoInvertido_Retorna400(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleAdmin)
	enableModule(t, app, token, entity.ModuleJPK)

	resp := call(t, app, http.MethodPost, "/api/jpk/vat", token, dto.GenerateVATRequest{DateFrom: "2024-05-31", DateTo: "2024-05-01"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeJSON[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_V7MSinUrzad_Retorna400(t *testing.T) {
	app := buildRouterApp(t)
	token, _ := bootstrap(t, app, entity.RoleAdmin)
	enableModule(t, app, token, entity.ModuleJPK)

	resp := call(t, app, http.MethodPost, "/api/jpk/v7m", token, dto.GenerateV7MRequest{Version: "1-2E", Year: 2024, Month: 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Message, "urząd skarbowy")
}
