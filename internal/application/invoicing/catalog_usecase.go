package invoicing

import (
	"context"
	"time"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/accounting"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

// CatalogUseCase impuestos, tipos de cambio, productos y diarios de la empresa.
type CatalogUseCase struct {
	taxRepo      repository.TaxRepository
	currencyRepo repository.CurrencyRepository
	productRepo  repository.ProductRepository
	journalRepo  repository.JournalRepository
	catalog      *catalogCache
	log          *logger.Logger
}

// NewCatalogUseCase comparte la caché de impuestos de invoices para invalidarla en los cambios.
func NewCatalogUseCase(repos Repositories, invoices *InvoiceUseCase, log *logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		taxRepo:      repos.Taxes,
		currencyRepo: repos.Currencies,
		productRepo:  repos.Products,
		journalRepo:  repos.Journals,
		catalog:      invoices.catalog,
		log:          log,
	}
}

// CreateTaxGroup crea un grupo de VAT.
func (uc *CatalogUseCase) CreateTaxGroup(ctx context.Context, companyID string, in dto.CreateTaxGroupRequest) (*dto.TaxGroupResponse, error) {
	g := &entity.TaxGroup{
		CompanyID:         companyID,
		Name:              in.Name,
		Sequence:          in.Sequence,
		PrecedingSubtotal: in.PrecedingSubtotal,
	}
	if err := uc.taxRepo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	uc.catalog.invalidateTaxes(companyID)
	return &dto.TaxGroupResponse{ID: g.ID, Name: g.Name, Sequence: g.Sequence, PrecedingSubtotal: g.PrecedingSubtotal}, nil
}

// CreateTax crea un tipo de VAT del grupo indicado.
func (uc *CatalogUseCase) CreateTax(ctx context.Context, companyID string, in dto.CreateTaxRequest) (*dto.TaxResponse, error) {
	if in.Amount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	cat, err := uc.catalog.taxes(ctx, companyID)
	if err != nil {
		return nil, err
	}
	group, ok := cat.groups[in.TaxGroupID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t := &entity.Tax{
		CompanyID:         companyID,
		Name:              in.Name,
		Amount:            in.Amount,
		TypeTaxUse:        in.TypeTaxUse,
		TaxGroupID:        in.TaxGroupID,
		Exigibility:       in.Exigibility,
		InvoiceBaseTagIDs: in.InvoiceBaseTagIDs,
		InvoiceTaxTagIDs:  in.InvoiceTaxTagIDs,
		RefundBaseTagIDs:  in.RefundBaseTagIDs,
		RefundTaxTagIDs:   in.RefundTaxTagIDs,
	}
	if t.Exigibility == "" {
		t.Exigibility = entity.TaxExigibilityOnInvoice
	}
	if err := uc.taxRepo.CreateTax(ctx, t); err != nil {
		return nil, err
	}
	uc.catalog.invalidateTaxes(companyID)
	return toTaxResponse(t, group), nil
}

// ListTaxes impuestos ordenados por la secuencia de su grupo.
func (uc *CatalogUseCase) ListTaxes(ctx context.Context, companyID string) ([]dto.TaxResponse, error) {
	cat, err := uc.catalog.taxes(ctx, companyID)
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Tax, 0, len(cat.taxes))
	for _, t := range cat.taxes {
		list = append(list, t)
	}
	out := make([]dto.TaxResponse, 0, len(list))
	for _, t := range accounting.TaxesByGroupSequence(list, cat.groups) {
		out = append(out, *toTaxResponse(t, cat.groups[t.TaxGroupID]))
	}
	return out, nil
}

func toTaxResponse(t *entity.Tax, g *entity.TaxGroup) *dto.TaxResponse {
	resp := &dto.TaxResponse{
		ID:          t.ID,
		Name:        t.Name,
		Amount:      t.Amount,
		TypeTaxUse:  t.TypeTaxUse,
		TaxGroupID:  t.TaxGroupID,
		Exigibility: t.Exigibility,
	}
	if g != nil {
		resp.TaxGroupName = g.Name
	}
	return resp
}

// CreateRate registra el tipo de cambio de una moneda a una fecha.
func (uc *CatalogUseCase) CreateRate(ctx context.Context, companyID string, in dto.CreateRateRequest) (*dto.CurrencyRateResponse, error) {
	if !in.Rate.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	date, err := time.Parse(dto.DateLayout, in.Date)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	r := &entity.CurrencyRate{CompanyID: companyID, CurrencyCode: in.CurrencyCode, Date: date, Rate: in.Rate}
	if err := uc.currencyRepo.CreateRate(ctx, r); err != nil {
		return nil, err
	}
	return &dto.CurrencyRateResponse{ID: r.ID, CurrencyCode: r.CurrencyCode, Date: in.Date, Rate: r.Rate}, nil
}

// CreateProduct da de alta un producto con sus impuestos y GTU por defecto.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	cat, err := uc.catalog.taxes(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, id := range in.TaxIDs {
		if _, ok := cat.taxes[id]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	p := &entity.Product{CompanyID: companyID, SKU: in.SKU, Name: in.Name, Price: in.Price, TaxIDs: in.TaxIDs, GTU: in.GTU}
	if err := uc.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// ListProducts productos de la empresa paginados.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.ProductResponse, error) {
	page.DefaultPage()
	list, err := uc.productRepo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{ID: p.ID, SKU: p.SKU, Name: p.Name, Price: p.Price, TaxIDs: p.TaxIDs, GTU: p.GTU}
}

// CreateJournal crea un diario con su numeración y tipos de documento JPK por defecto.
func (uc *CatalogUseCase) CreateJournal(ctx context.Context, companyID string, in dto.CreateJournalRequest) (*dto.JournalResponse, error) {
	j := &entity.Journal{
		CompanyID:       companyID,
		Code:            in.Code,
		Name:            in.Name,
		Type:            in.Type,
		Prefix:          in.Prefix,
		SaleDocType:     in.SaleDocType,
		PurchaseDocType: in.PurchaseDocType,
		IsDefault:       in.IsDefault,
	}
	if err := uc.journalRepo.Create(ctx, j); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", companyID).Str("journal", j.Code).Msg("diario creado")
	return toJournalResponse(j), nil
}

// ListJournals diarios de la empresa.
func (uc *CatalogUseCase) ListJournals(ctx context.Context, companyID string) ([]dto.JournalResponse, error) {
	list, err := uc.journalRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JournalResponse, 0, len(list))
	for _, j := range list {
		out = append(out, *toJournalResponse(j))
	}
	return out, nil
}

func toJournalResponse(j *entity.Journal) *dto.JournalResponse {
	return &dto.JournalResponse{
		ID:              j.ID,
		Code:            j.Code,
		Name:            j.Name,
		Type:            j.Type,
		Prefix:          j.Prefix,
		NextNumber:      j.NextNumber,
		SaleDocType:     j.SaleDocType,
		PurchaseDocType: j.PurchaseDocType,
		IsDefault:       j.IsDefault,
	}
}
