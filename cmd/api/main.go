package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/jpk-api/docs"
	"github.com/jhoicas/jpk-api/internal/application/auth"
	"github.com/jhoicas/jpk-api/internal/application/invoicing"
	"github.com/jhoicas/jpk-api/internal/application/reporting"
	"github.com/jhoicas/jpk-api/internal/application/usecase"
	"github.com/jhoicas/jpk-api/internal/infrastructure/archive"
	"github.com/jhoicas/jpk-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/jpk-api/internal/interfaces/http"
	"github.com/jhoicas/jpk-api/pkg/config"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

// @title                       jpk-api
// @version                     1.0
// @description                 Facturas, faktury korygujące y archivos JPK_VAT / JPK_V7M.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.MigrateOnStart {
		if err := postgres.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	jpkRepo := postgres.NewJPKRepository(pool)

	invoiceUC := invoicing.NewInvoiceUseCase(invoicing.Repositories{
		Invoices:   invoiceRepo,
		Journals:   journalRepo,
		Partners:   partnerRepo,
		Products:   postgres.NewProductRepository(pool),
		Companies:  companyRepo,
		Taxes:      postgres.NewTaxRepository(pool),
		Currencies: postgres.NewCurrencyRepository(pool),
	}, postgres.NewTxRunner(pool), log, cfg.JPK.CacheTTL).WithDefaultLang(cfg.JPK.DefaultLang)
	catalogUC := invoicing.NewCatalogUseCase(invoicing.Repositories{
		Journals:   journalRepo,
		Products:   postgres.NewProductRepository(pool),
		Taxes:      postgres.NewTaxRepository(pool),
		Currencies: postgres.NewCurrencyRepository(pool),
	}, invoiceUC, log)

	// Archivo S3 de los JPK generados; sin bucket se desactiva.
	var archiver reporting.Archiver = archive.NopArchiver{}
	if cfg.Storage.Enabled {
		s3Archiver, err := archive.NewS3Archiver(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente S3")
		}
		archiver = s3Archiver
	}
	jpkUC := reporting.NewJPKUseCase(reporting.Repositories{
		JPK:          jpkRepo,
		Declarations: postgres.NewDeclarationRepository(pool),
		Companies:    companyRepo,
		Partners:     partnerRepo,
		Users:        userRepo,
	}, archiver, log, reporting.Options{SystemName: cfg.JPK.SystemName, CacheTTL: cfg.JPK.CacheTTL})

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Title = cfg.App.Name
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "jpk-api",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    usecase.NewUserUseCase(userRepo),
		CompanyUC: usecase.NewCompanyUseCase(companyRepo, journalRepo, log),
		PartnerUC: usecase.NewPartnerUseCase(partnerRepo),
		Modules:   usecase.NewModuleService(postgres.NewModuleRepository(pool)),
		InvoiceUC: invoiceUC,
		CatalogUC: catalogUC,
		JPKUC:     jpkUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
