package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

// taxCatalog impuestos y grupos de una empresa.
type taxCatalog struct {
	taxes  map[string]*entity.Tax
	groups map[string]*entity.TaxGroup
}

// catalogCache guarda en memoria impuestos por empresa y monedas por código.
type catalogCache struct {
	taxRepo      repository.TaxRepository
	currencyRepo repository.CurrencyRepository
	store        *cache.Cache
}

func newCatalogCache(taxRepo repository.TaxRepository, currencyRepo repository.CurrencyRepository, ttl time.Duration) *catalogCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &catalogCache{
		taxRepo:      taxRepo,
		currencyRepo: currencyRepo,
		store:        cache.New(ttl, 2*ttl),
	}
}

func (c *catalogCache) taxes(ctx context.Context, companyID string) (*taxCatalog, error) {
	key := "taxes:" + companyID
	if v, ok := c.store.Get(key); ok {
		return v.(*taxCatalog), nil
	}
	taxes, err := c.taxRepo.TaxesByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("cargar impuestos: %w", err)
	}
	groups, err := c.taxRepo.GroupsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("cargar grupos de impuestos: %w", err)
	}
	cat := &taxCatalog{taxes: taxes, groups: groups}
	c.store.Set(key, cat, cache.DefaultExpiration)
	return cat, nil
}

// currency devuelve la moneda; si no está dada de alta se usa el código como símbolo.
func (c *catalogCache) currency(ctx context.Context, code string) (entity.Currency, error) {
	key := "currency:" + code
	if v, ok := c.store.Get(key); ok {
		return v.(entity.Currency), nil
	}
	cur, err := c.currencyRepo.GetByCode(ctx, code)
	if err != nil {
		return entity.Currency{}, fmt.Errorf("cargar moneda %s: %w", code, err)
	}
	out := entity.Currency{Code: code, Symbol: code, Position: entity.SymbolAfter, Digits: 2}
	if cur != nil {
		out = *cur
	}
	c.store.Set(key, out, cache.DefaultExpiration)
	return out, nil
}

// invalidateTaxes descarta los impuestos cacheados de la empresa.
func (c *catalogCache) invalidateTaxes(companyID string) {
	c.store.Delete("taxes:" + companyID)
}
