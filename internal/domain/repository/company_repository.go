package repository

import (
	"context"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByVAT(ctx context.Context, vat string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	Delete(ctx context.Context, id string) error
}

// ModuleRepository persistencia de los módulos SaaS contratados.
type ModuleRepository interface {
	// IsActive informa si la empresa tiene el módulo activo y no vencido.
	IsActive(ctx context.Context, companyID, moduleName string) (bool, error)
	Upsert(ctx context.Context, m *entity.CompanyModule) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyModule, error)
}
