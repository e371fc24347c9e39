package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/jpk-api/internal/application/auth"
	"github.com/jhoicas/jpk-api/internal/application/invoicing"
	"github.com/jhoicas/jpk-api/internal/application/reporting"
	"github.com/jhoicas/jpk-api/internal/application/usecase"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *usecase.UserUseCase
	CompanyUC *usecase.CompanyUseCase
	PartnerUC *usecase.PartnerUseCase
	Modules   *usecase.ModuleService
	InvoiceUC *invoicing.InvoiceUseCase
	CatalogUC *invoicing.CatalogUseCase
	JPKUC     *reporting.JPKUseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	readers := RequireRole(entity.RoleAdmin, entity.RoleContable, entity.RoleAuditor)
	writers := RequireRole(entity.RoleAdmin, entity.RoleContable)
	admins := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Alta de empresa (público, bootstrap del primer admin)
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.Modules)
	api.Post("/companies", companyHandler.Create)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", readers, authHandler.Me)

	companies := protected.Group("/companies")
	companies.Get("/", admins, companyHandler.List)
	companies.Get("/me", readers, companyHandler.Me)
	companies.Patch("/me", admins, companyHandler.Update)
	companies.Get("/me/modules", readers, companyHandler.ListModules)
	companies.Put("/me/modules", admins, companyHandler.UpsertModule)

	partnerHandler := NewPartnerHandler(deps.PartnerUC)
	partners := protected.Group("/partners")
	partners.Get("/", readers, partnerHandler.List)
	partners.Post("/", writers, partnerHandler.Create)
	partners.Get("/:id", readers, partnerHandler.GetByID)
	partners.Patch("/:id", writers, partnerHandler.Update)

	// Facturación (módulo invoicing)
	invoicingModule := RequireModule(entity.ModuleInvoicing, deps.Modules, deps.Log)

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	protected.Post("/tax-groups", invoicingModule, admins, catalogHandler.CreateTaxGroup)
	protected.Get("/taxes", invoicingModule, readers, catalogHandler.ListTaxes)
	protected.Post("/taxes", invoicingModule, admins, catalogHandler.CreateTax)
	protected.Post("/currency-rates", invoicingModule, writers, catalogHandler.CreateRate)
	protected.Get("/products", invoicingModule, readers, catalogHandler.ListProducts)
	protected.Post("/products", invoicingModule, writers, catalogHandler.CreateProduct)
	protected.Get("/journals", invoicingModule, readers, catalogHandler.ListJournals)
	protected.Post("/journals", invoicingModule, admins, catalogHandler.CreateJournal)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices := protected.Group("/invoices", invoicingModule)
	invoices.Get("/register", readers, invoiceHandler.Register)
	invoices.Get("/", readers, invoiceHandler.List)
	invoices.Post("/", writers, invoiceHandler.Create)
	invoices.Get("/:id", readers, invoiceHandler.GetByID)
	invoices.Post("/:id/post", writers, invoiceHandler.Post)
	invoices.Post("/:id/draft", writers, invoiceHandler.ResetToDraft)
	invoices.Post("/:id/cancel", writers, invoiceHandler.Cancel)
	invoices.Post("/:id/corrections", writers, invoiceHandler.CreateCorrection)
	invoices.Get("/:id/tax-totals", readers, invoiceHandler.TaxTotals)
	invoices.Get("/:id/summary", readers, invoiceHandler.Summary)

	// JPK (módulo jpk)
	jpkModule := RequireModule(entity.ModuleJPK, deps.Modules, deps.Log)
	jpkHandler := NewJPKHandler(deps.JPKUC)

	jpk := protected.Group("/jpk", jpkModule)
	jpk.Post("/vat", writers, jpkHandler.GenerateVAT)
	jpk.Post("/v7m", writers, jpkHandler.GenerateV7M)
	jpk.Get("/dictionaries", readers, jpkHandler.Dictionaries)
	jpk.Get("/tax-offices", readers, jpkHandler.TaxOffices)
	jpk.Post("/tax-offices/import", admins, jpkHandler.ImportTaxOffices)

	declarations := protected.Group("/declarations", jpkModule)
	declarations.Get("/", readers, jpkHandler.ListDeclarations)
	declarations.Get("/:id", readers, jpkHandler.GetDeclaration)
	declarations.Patch("/:id", writers, jpkHandler.UpdateDeclaration)
	declarations.Get("/:id/xml", readers, jpkHandler.DeclarationXML)
}
