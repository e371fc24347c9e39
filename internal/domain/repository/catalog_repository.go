package repository

import (
	"context"
	"time"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// TaxRepository impuestos y grupos de impuestos de la empresa.
type TaxRepository interface {
	CreateTax(ctx context.Context, tax *entity.Tax) error
	CreateGroup(ctx context.Context, group *entity.TaxGroup) error
	// TaxesByCompany devuelve los impuestos indexados por ID.
	TaxesByCompany(ctx context.Context, companyID string) (map[string]*entity.Tax, error)
	GroupsByCompany(ctx context.Context, companyID string) (map[string]*entity.TaxGroup, error)
}

// CurrencyRepository monedas y tipos de cambio.
type CurrencyRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Currency, error)
	// RateAt devuelve el último tipo con fecha <= date o nil si no hay ninguno.
	RateAt(ctx context.Context, companyID, code string, date time.Time) (*entity.CurrencyRate, error)
	CreateRate(ctx context.Context, rate *entity.CurrencyRate) error
}

// ProductRepository productos con su GTU e impuestos por defecto.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
}

// JournalRepository diarios y su numeración.
type JournalRepository interface {
	Create(ctx context.Context, journal *entity.Journal) error
	GetByID(ctx context.Context, id string) (*entity.Journal, error)
	// GetDefault diario por defecto de la empresa para el tipo (sale, purchase, general).
	GetDefault(ctx context.Context, companyID, journalType string) (*entity.Journal, error)
	// NextNumber reserva el siguiente número del diario.
	NextNumber(ctx context.Context, journalID string) (int64, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Journal, error)
}
