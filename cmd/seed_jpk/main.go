// seed_jpk carga los diccionarios JPK (tipos de archivo JPK_VAT, JPK_V7M y códigos GTU) y,
// si se indica, los urzędy skarbowe del XSD oficial KodyUrzedowSkarbowych.
//
// Uso: go run ./cmd/seed_jpk [ruta/KodyUrzedowSkarbowych_v5-0E.xsd]
package main

import (
	"context"
	"os"

	"github.com/jhoicas/jpk-api/internal/application/reporting"
	"github.com/jhoicas/jpk-api/internal/infrastructure/archive"
	"github.com/jhoicas/jpk-api/internal/infrastructure/postgres"
	"github.com/jhoicas/jpk-api/pkg/config"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_jpk"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	uc := reporting.NewJPKUseCase(reporting.Repositories{
		JPK:          postgres.NewJPKRepository(pool),
		Declarations: postgres.NewDeclarationRepository(pool),
		Companies:    postgres.NewCompanyRepository(pool),
		Partners:     postgres.NewPartnerRepository(pool),
		Users:        postgres.NewUserRepository(pool),
	}, archive.NopArchiver{}, log, reporting.Options{SystemName: cfg.JPK.SystemName})

	if err := uc.SeedDictionaries(ctx); err != nil {
		log.Fatal().Err(err).Msg("cargar diccionarios JPK")
	}
	log.Info().Msg("diccionarios JPK cargados")

	if len(os.Args) < 2 {
		return
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Str("path", os.Args[1]).Msg("abrir XSD")
	}
	defer f.Close()

	n, err := uc.ImportTaxOffices(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Msg("importar urzędy skarbowe")
	}
	log.Info().Int("count", n).Msg("urzędy skarbowe importados")
}
