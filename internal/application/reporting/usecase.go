// Package reporting genera los archivos JPK_VAT(3) y JPK_V7M, guarda la parte declarativa
// VAT-7 y sirve los diccionarios JPK.
package reporting

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
	"github.com/jhoicas/jpk-api/internal/infrastructure/jpkxml"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

// Tipos de archivo para la clave de archivo.
const (
	KindVAT = "vat"
	KindV7M = "v7m"
)

// Repositories puertos usados por la generación de JPK.
type Repositories struct {
	JPK          repository.JPKRepository
	Declarations repository.DeclarationRepository
	Companies    repository.CompanyRepository
	Partners     repository.PartnerRepository
	Users        repository.UserRepository
}

// Options parámetros de generación.
type Options struct {
	SystemName string        // NazwaSystemu
	CacheTTL   time.Duration // diccionarios
}

// JPKUseCase casos de uso de JPK y declaraciones.
type JPKUseCase struct {
	jpkRepo     repository.JPKRepository
	declRepo    repository.DeclarationRepository
	companyRepo repository.CompanyRepository
	partnerRepo repository.PartnerRepository
	userRepo    repository.UserRepository
	archiver    Archiver
	dict        *cache.Cache
	systemName  string
	log         *logger.Logger
	now         func() time.Time
}

// NewJPKUseCase construye el caso de uso. archiver nil desactiva el archivo.
func NewJPKUseCase(repos Repositories, archiver Archiver, log *logger.Logger, opts Options) *JPKUseCase {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &JPKUseCase{
		jpkRepo:     repos.JPK,
		declRepo:    repos.Declarations,
		companyRepo: repos.Companies,
		partnerRepo: repos.Partners,
		userRepo:    repos.Users,
		archiver:    archiver,
		dict:        cache.New(ttl, 2*ttl),
		systemName:  opts.SystemName,
		log:         log,
		now:         time.Now,
	}
}

// WithClock fija el reloj de DataWytworzeniaJPK (tests).
func (uc *JPKUseCase) WithClock(now func() time.Time) *JPKUseCase {
	uc.now = now
	return uc
}

// GenerateVAT genera el JPK_VAT(3) del periodo. Podmiot1/Email es el del usuario.
func (uc *JPKUseCase) GenerateVAT(ctx context.Context, companyID, userID string, in dto.GenerateVATRequest) (*dto.JPKFileResponse, error) {
	from, err := time.Parse(dto.DateLayout, in.DateFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: date_from", domain.ErrInvalidInput)
	}
	to, err := time.Parse(dto.DateLayout, in.DateTo)
	if err != nil {
		return nil, fmt.Errorf("%w: date_to", domain.ErrInvalidInput)
	}
	if to.Before(from) {
		return nil, domain.ErrInvalidPeriod
	}

	var (
		company *entity.Company
		user    *entity.User
		entries []jpk.Entry
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		c, err := uc.company(ctx, companyID)
		company = c
		return err
	})
	p.Go(func(ctx context.Context) error {
		u, err := uc.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := uc.jpkRepo.Entries(ctx, repository.EntryQuery{
			CompanyID:     companyID,
			DocTypeName:   entity.DocTypeJPKVAT,
			DateFrom:      from,
			DateTo:        to,
			IncludeDrafts: in.IncludeDrafts,
		})
		entries = rows
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	email := ""
	if user != nil {
		email = user.Email
	}
	sections := jpk.GroupVAT(jpk.AggregateVAT(entries))
	content, err := jpkxml.BuildVAT(jpkxml.VATInput{
		Company:    company,
		UserEmail:  email,
		DateFrom:   from,
		DateTo:     to,
		Correction: in.Correction,
		SystemName: uc.systemName,
		Created:    uc.now(),
		Sections:   sections,
	})
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("jpk_vat_%s_%s", in.DateFrom, in.DateTo)
	if in.Correction > 0 {
		filename = fmt.Sprintf("%s_korekta_%d", filename, in.Correction)
	}
	doc := Document{CompanyID: companyID, Kind: KindVAT, Year: from.Year(), Month: int(from.Month()), Filename: filename, Content: content}
	resp, err := uc.finish(&doc)
	if err != nil {
		return nil, err
	}
	resp.ArchiveKey = uc.archive(ctx, doc)
	resp.SaleRows = len(sections[entity.SectionSale])
	resp.PurchaseRows = len(sections[entity.SectionPurchase])

	uc.log.Info().
		Str("company_id", companyID).
		Str("date_from", in.DateFrom).
		Str("date_to", in.DateTo).
		Int("sale_rows", resp.SaleRows).
		Int("purchase_rows", resp.PurchaseRows).
		Msg("JPK_VAT generado")
	return resp, nil
}

// GenerateV7M genera el JPK_V7M del mes con la parte declarativa calculada y guarda la
// declaración para editarla después.
func (uc *JPKUseCase) GenerateV7M(ctx context.Context, companyID string, in dto.GenerateV7MRequest) (*dto.JPKFileResponse, error) {
	schema, err := jpk.SchemaFor(in.Version)
	if err != nil {
		return nil, err
	}
	if in.Month < 1 || in.Month > 12 || in.Year < 2020 {
		return nil, domain.ErrInvalidPeriod
	}
	cel := in.CelZlozenia
	if cel == 0 {
		cel = 1
	}
	from := time.Date(in.Year, time.Month(in.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	var (
		company *entity.Company
		office  *entity.TaxOffice
		entries []jpk.Entry
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		c, err := uc.company(ctx, companyID)
		if err != nil {
			return err
		}
		company = c
		if c.TaxOfficeID == "" {
			return nil
		}
		office, err = uc.jpkRepo.GetTaxOffice(ctx, c.TaxOfficeID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		rows, err := uc.jpkRepo.Entries(ctx, repository.EntryQuery{
			CompanyID:        companyID,
			DocTypeName:      schema.DocType,
			DateFrom:         from,
			DateTo:           to,
			ExcludeOnPayment: in.ExcludeOnPayment,
		})
		entries = rows
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	partnerIDs := lo.Uniq(lo.FilterMap(entries, func(e jpk.Entry, _ int) (string, bool) {
		return e.PartnerID, e.PartnerID != ""
	}))
	partners, err := uc.partnerRepo.GetByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, err
	}

	ledger := jpk.BuildLedger(jpk.GroupV7M(jpk.AggregateV7M(entries)), schema, partners)
	source, err := jpkxml.BuildV7M(jpkxml.V7MInput{
		Schema:      schema,
		Company:     company,
		TaxOffice:   office,
		Year:        in.Year,
		Month:       in.Month,
		CelZlozenia: cel,
		SystemName:  uc.systemName,
		Created:     uc.now(),
		Ledger:      ledger,
	})
	if err != nil {
		return nil, err
	}

	decl := jpk.NewDeclaration(in.Version, in.Year, in.Month, cel, ledger.Groups)
	decl.CompanyID = companyID
	decl.SourceXML = source
	content, err := jpkxml.RenderDeclaration(source, decl)
	if err != nil {
		return nil, err
	}

	doc := Document{CompanyID: companyID, Kind: KindV7M, Year: in.Year, Month: in.Month, Filename: jpk.Filename(decl), Content: content}
	resp, err := uc.finish(&doc)
	if err != nil {
		return nil, err
	}
	if err := uc.declRepo.Create(ctx, decl); err != nil {
		return nil, err
	}
	if key := uc.archive(ctx, doc); key != "" {
		decl.ArchiveKey = key
		if err := uc.declRepo.Update(ctx, decl); err != nil {
			uc.log.Error().Err(err).Str("declaration_id", decl.ID).Str("archive_key", key).Msg("no se pudo guardar la clave de archivo")
		} else {
			resp.ArchiveKey = key
		}
	}
	resp.DeclarationID = decl.ID
	resp.SaleRows = len(ledger.Sale.Rows)
	resp.PurchaseRows = len(ledger.Purchase.Rows)

	uc.log.Info().
		Str("company_id", companyID).
		Str("declaration_id", decl.ID).
		Str("version", in.Version).
		Int("year", in.Year).
		Int("month", in.Month).
		Int("cel_zlozenia", cel).
		Msg("JPK_V7M generado")
	return resp, nil
}

// finish calcula el digest del documento y arma la respuesta.
func (uc *JPKUseCase) finish(doc *Document) (*dto.JPKFileResponse, error) {
	digest, err := jpkxml.Digest(doc.Content)
	if err != nil {
		return nil, err
	}
	doc.Digest = digest
	return &dto.JPKFileResponse{
		Filename: doc.Filename + ".xml",
		Content:  base64.StdEncoding.EncodeToString(doc.Content),
		Digest:   digest,
	}, nil
}

// archive sube el JPK y devuelve su clave. Un fallo del archivo se registra y no impide
// devolver el JPK.
func (uc *JPKUseCase) archive(ctx context.Context, doc Document) string {
	if uc.archiver == nil {
		return ""
	}
	key, err := uc.archiver.Archive(ctx, doc)
	if err != nil {
		uc.log.Error().Err(err).Str("company_id", doc.CompanyID).Str("file", doc.Filename).Msg("no se pudo archivar el JPK")
		return ""
	}
	return key
}

func (uc *JPKUseCase) company(ctx context.Context, id string) (*entity.Company, error) {
	c, err := uc.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}
