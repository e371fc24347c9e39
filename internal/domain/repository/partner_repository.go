package repository

import (
	"context"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// PartnerRepository define el puerto de persistencia para contratistas.
type PartnerRepository interface {
	Create(ctx context.Context, partner *entity.Partner) error
	GetByID(ctx context.Context, id string) (*entity.Partner, error)
	// GetByIDs devuelve los contratistas encontrados indexados por ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Partner, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Partner, error)
	Update(ctx context.Context, partner *entity.Partner) error
}
