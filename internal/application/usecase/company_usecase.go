package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
	"github.com/jhoicas/jpk-api/pkg/logger"
	"github.com/jhoicas/jpk-api/pkg/pl"
)

// defaultJournals diarios creados con cada empresa nueva.
var defaultJournals = []entity.Journal{
	{Code: "FV", Name: "Faktury sprzedaży", Type: entity.JournalTypeSale, Prefix: "FV", IsDefault: true},
	{Code: "FZ", Name: "Faktury zakupu", Type: entity.JournalTypePurchase, Prefix: "FZ", IsDefault: true},
	{Code: "PK", Name: "Polecenia księgowania", Type: entity.JournalTypeGeneral, Prefix: "PK", IsDefault: true},
}

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo        repository.CompanyRepository
	journalRepo repository.JournalRepository
	log         *logger.Logger
}

// NewCompanyUseCase construye el caso de uso. journalRepo nil omite los diarios por defecto.
func NewCompanyUseCase(repo repository.CompanyRepository, journalRepo repository.JournalRepository, log *logger.Logger) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, journalRepo: journalRepo, log: log}
}

// Create crea una nueva empresa con sus diarios por defecto. El NIP debe superar la suma de
// control; devuelve domain.ErrDuplicate si ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := pl.ValidateNIP(in.VAT); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompanyVATInvalid, err)
	}
	existing, err := uc.repo.GetByVAT(ctx, in.VAT)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		Name:                    in.Name,
		VAT:                     in.VAT,
		Street:                  in.Street,
		Street2:                 in.Street2,
		City:                    in.City,
		Zip:                     in.Zip,
		CountryCode:             in.CountryCode,
		Phone:                   in.Phone,
		Email:                   in.Email,
		CurrencyCode:            in.CurrencyCode,
		Lang:                    in.Lang,
		TaxOfficeID:             in.TaxOfficeID,
		County:                  in.County,
		Community:               in.Community,
		Post:                    in.Post,
		EnableInvoiceRateChange: in.EnableInvoiceRateChange,
		Status:                  "active",
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if company.CountryCode == "" {
		company.CountryCode = "PL"
	}
	if company.CurrencyCode == "" {
		company.CurrencyCode = "PLN"
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	if uc.journalRepo != nil {
		for _, tpl := range defaultJournals {
			j := tpl
			j.CompanyID = company.ID
			if err := uc.journalRepo.Create(ctx, &j); err != nil {
				return nil, fmt.Errorf("crear diario %s: %w", j.Code, err)
			}
		}
	}
	uc.log.Info().Str("company_id", company.ID).Str("vat", company.VAT).Msg("empresa creada")
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// Update aplica los campos presentes.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Name, in.Name)
	set(&c.Street, in.Street)
	set(&c.Street2, in.Street2)
	set(&c.City, in.City)
	set(&c.Zip, in.Zip)
	set(&c.Phone, in.Phone)
	set(&c.Email, in.Email)
	set(&c.Lang, in.Lang)
	set(&c.TaxOfficeID, in.TaxOfficeID)
	set(&c.County, in.County)
	set(&c.Community, in.Community)
	set(&c.Post, in.Post)
	set(&c.Status, in.Status)
	if in.EnableInvoiceRateChange != nil {
		c.EnableInvoiceRateChange = *in.EnableInvoiceRateChange
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(c), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.CompanyListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:                      c.ID,
		Name:                    c.Name,
		VAT:                     c.VAT,
		Street:                  c.Street,
		Street2:                 c.Street2,
		City:                    c.City,
		Zip:                     c.Zip,
		CountryCode:             c.CountryCode,
		Phone:                   c.Phone,
		Email:                   c.Email,
		CurrencyCode:            c.CurrencyCode,
		Lang:                    c.Lang,
		TaxOfficeID:             c.TaxOfficeID,
		County:                  c.County,
		Community:               c.Community,
		Post:                    c.Post,
		EnableInvoiceRateChange: c.EnableInvoiceRateChange,
		Status:                  c.Status,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}
