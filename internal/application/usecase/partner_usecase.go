package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

// PartnerUseCase alta y mantenimiento de contratistas.
type PartnerUseCase struct {
	repo repository.PartnerRepository
}

// NewPartnerUseCase construye el caso de uso.
func NewPartnerUseCase(repo repository.PartnerRepository) *PartnerUseCase {
	return &PartnerUseCase{repo: repo}
}

// Create registra el contratista de la empresa. El país se normaliza a mayúsculas.
func (uc *PartnerUseCase) Create(ctx context.Context, companyID string, in dto.CreatePartnerRequest) (*dto.PartnerResponse, error) {
	now := time.Now()
	p := &entity.Partner{
		CompanyID:   companyID,
		Name:        in.Name,
		VAT:         strings.TrimSpace(in.VAT),
		Street:      in.Street,
		Street2:     in.Street2,
		City:        in.City,
		Zip:         in.Zip,
		CountryCode: strings.ToUpper(in.CountryCode),
		Email:       in.Email,
		Lang:        in.Lang,
		TP:          in.TP,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toPartnerResponse(p), nil
}

// Get devuelve el contratista si pertenece a la empresa.
func (uc *PartnerUseCase) Get(ctx context.Context, companyID, id string) (*dto.PartnerResponse, error) {
	p, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toPartnerResponse(p), nil
}

// Update aplica los campos presentes.
func (uc *PartnerUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdatePartnerRequest) (*dto.PartnerResponse, error) {
	p, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.VAT != nil {
		p.VAT = strings.TrimSpace(*in.VAT)
	}
	if in.Street != nil {
		p.Street = *in.Street
	}
	if in.Street2 != nil {
		p.Street2 = *in.Street2
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.Zip != nil {
		p.Zip = *in.Zip
	}
	if in.CountryCode != nil {
		p.CountryCode = strings.ToUpper(*in.CountryCode)
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.TP != nil {
		p.TP = *in.TP
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toPartnerResponse(p), nil
}

// List contratistas de la empresa.
func (uc *PartnerUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.PartnerListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PartnerResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPartnerResponse(p))
	}
	return &dto.PartnerListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

func (uc *PartnerUseCase) load(ctx context.Context, companyID, id string) (*entity.Partner, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func toPartnerResponse(p *entity.Partner) *dto.PartnerResponse {
	return &dto.PartnerResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Name:        p.Name,
		VAT:         p.VAT,
		Street:      p.Street,
		Street2:     p.Street2,
		City:        p.City,
		Zip:         p.Zip,
		CountryCode: p.CountryCode,
		Email:       p.Email,
		TP:          p.TP,
		TINCountry:  p.TINCountry(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
