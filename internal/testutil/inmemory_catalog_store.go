package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var (
	_ repository.TaxRepository      = (*InMemoryTaxStore)(nil)
	_ repository.CurrencyRepository = (*InMemoryCurrencyStore)(nil)
	_ repository.ProductRepository  = (*InMemoryProductStore)(nil)
	_ repository.JournalRepository  = (*InMemoryJournalStore)(nil)
)

// InMemoryTaxStore impuestos y grupos.
type InMemoryTaxStore struct {
	mu     sync.RWMutex
	taxes  map[string]*entity.Tax
	groups map[string]*entity.TaxGroup
	// Loads cuenta las lecturas de impuestos (para tests de caché).
	Loads int
}

func NewInMemoryTaxStore() *InMemoryTaxStore {
	return &InMemoryTaxStore{taxes: map[string]*entity.Tax{}, groups: map[string]*entity.TaxGroup{}}
}

func (s *InMemoryTaxStore) CreateTax(_ context.Context, t *entity.Tax) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	s.taxes[t.ID] = t
	return nil
}

func (s *InMemoryTaxStore) CreateGroup(_ context.Context, g *entity.TaxGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	s.groups[g.ID] = g
	return nil
}

func (s *InMemoryTaxStore) TaxesByCompany(_ context.Context, companyID string) (map[string]*entity.Tax, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Loads++
	out := map[string]*entity.Tax{}
	for id, t := range s.taxes {
		if t.CompanyID == companyID {
			out[id] = t
		}
	}
	return out, nil
}

func (s *InMemoryTaxStore) GroupsByCompany(_ context.Context, companyID string) (map[string]*entity.TaxGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]*entity.TaxGroup{}
	for id, g := range s.groups {
		if g.CompanyID == companyID {
			out[id] = g
		}
	}
	return out, nil
}

// InMemoryCurrencyStore monedas y tipos de cambio.
type InMemoryCurrencyStore struct {
	mu         sync.RWMutex
	currencies map[string]*entity.Currency
	rates      []*entity.CurrencyRate
}

func NewInMemoryCurrencyStore(currencies ...entity.Currency) *InMemoryCurrencyStore {
	s := &InMemoryCurrencyStore{currencies: map[string]*entity.Currency{}}
	for i := range currencies {
		c := currencies[i]
		s.currencies[c.Code] = &c
	}
	return s
}

func (s *InMemoryCurrencyStore) GetByCode(_ context.Context, code string) (*entity.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currencies[code], nil
}

func (s *InMemoryCurrencyStore) RateAt(_ context.Context, companyID, code string, date time.Time) (*entity.CurrencyRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *entity.CurrencyRate
	for _, r := range s.rates {
		if r.CompanyID != companyID || r.CurrencyCode != code || r.Date.After(date) {
			continue
		}
		if best == nil || r.Date.After(best.Date) {
			best = r
		}
	}
	return best, nil
}

func (s *InMemoryCurrencyStore) CreateRate(_ context.Context, r *entity.CurrencyRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.rates = append(s.rates, r)
	return nil
}

// InMemoryProductStore productos.
type InMemoryProductStore struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{products: map[string]*entity.Product{}}
}

func (s *InMemoryProductStore) Create(_ context.Context, p *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	for _, other := range s.products {
		if other.CompanyID == p.CompanyID && other.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	s.products[p.ID] = p
	return nil
}

func (s *InMemoryProductStore) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]*entity.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *InMemoryProductStore) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range s.products {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

// InMemoryJournalStore diarios con numeración.
type InMemoryJournalStore struct {
	mu       sync.Mutex
	journals map[string]*entity.Journal
}

func NewInMemoryJournalStore() *InMemoryJournalStore {
	return &InMemoryJournalStore{journals: map[string]*entity.Journal{}}
}

func (s *InMemoryJournalStore) Create(_ context.Context, j *entity.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.NextNumber <= 0 {
		j.NextNumber = 1
	}
	s.journals[j.ID] = j
	return nil
}

func (s *InMemoryJournalStore) GetByID(_ context.Context, id string) (*entity.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journals[id], nil
}

func (s *InMemoryJournalStore) GetDefault(_ context.Context, companyID, journalType string) (*entity.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.journals {
		if j.CompanyID == companyID && j.Type == journalType && j.IsDefault {
			return j, nil
		}
	}
	return nil, nil
}

func (s *InMemoryJournalStore) NextNumber(_ context.Context, journalID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[journalID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	n := j.NextNumber
	j.NextNumber++
	return n, nil
}

func (s *InMemoryJournalStore) ListByCompany(_ context.Context, companyID string) ([]*entity.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Journal
	for _, j := range s.journals {
		if j.CompanyID == companyID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Code < out[k].Code })
	return out, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
