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
	_ repository.CompanyRepository = (*InMemoryCompanyStore)(nil)
	_ repository.ModuleRepository  = (*InMemoryModuleStore)(nil)
	_ repository.PartnerRepository = (*InMemoryPartnerStore)(nil)
	_ repository.UserRepository    = (*InMemoryUserStore)(nil)
)

// InMemoryCompanyStore empresas.
type InMemoryCompanyStore struct {
	mu        sync.RWMutex
	companies map[string]*entity.Company
}

func NewInMemoryCompanyStore(companies ...*entity.Company) *InMemoryCompanyStore {
	s := &InMemoryCompanyStore{companies: map[string]*entity.Company{}}
	for _, c := range companies {
		s.companies[c.ID] = c
	}
	return s
}

func (s *InMemoryCompanyStore) Create(_ context.Context, c *entity.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	for _, other := range s.companies {
		if other.VAT == c.VAT {
			return domain.ErrDuplicate
		}
	}
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	s.companies[c.ID] = c
	return nil
}

func (s *InMemoryCompanyStore) GetByID(_ context.Context, id string) (*entity.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryCompanyStore) GetByVAT(_ context.Context, vat string) (*entity.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.companies {
		if c.VAT == vat {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *InMemoryCompanyStore) Update(_ context.Context, c *entity.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *InMemoryCompanyStore) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (s *InMemoryCompanyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.companies, id)
	return nil
}

// InMemoryModuleStore módulos contratados.
type InMemoryModuleStore struct {
	mu      sync.RWMutex
	modules map[string]*entity.CompanyModule // companyID/moduleName
}

func NewInMemoryModuleStore() *InMemoryModuleStore {
	return &InMemoryModuleStore{modules: map[string]*entity.CompanyModule{}}
}

func (s *InMemoryModuleStore) IsActive(_ context.Context, companyID, moduleName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[companyID+"/"+moduleName]
	if !ok || !m.IsActive {
		return false, nil
	}
	return m.ExpiresAt == nil || m.ExpiresAt.After(time.Now()), nil
}

func (s *InMemoryModuleStore) Upsert(_ context.Context, m *entity.CompanyModule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	s.modules[m.CompanyID+"/"+m.ModuleName] = m
	return nil
}

func (s *InMemoryModuleStore) ListByCompany(_ context.Context, companyID string) ([]*entity.CompanyModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.CompanyModule
	for _, m := range s.modules {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleName < out[j].ModuleName })
	return out, nil
}

// InMemoryPartnerStore contratistas.
type InMemoryPartnerStore struct {
	mu       sync.RWMutex
	partners map[string]*entity.Partner
}

func NewInMemoryPartnerStore(partners ...*entity.Partner) *InMemoryPartnerStore {
	s := &InMemoryPartnerStore{partners: map[string]*entity.Partner{}}
	for _, p := range partners {
		s.partners[p.ID] = p
	}
	return s
}

func (s *InMemoryPartnerStore) Create(_ context.Context, p *entity.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.partners[p.ID] = p
	return nil
}

func (s *InMemoryPartnerStore) GetByID(_ context.Context, id string) (*entity.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partners[id], nil
}

func (s *InMemoryPartnerStore) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]*entity.Partner{}
	for _, id := range ids {
		if p, ok := s.partners[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *InMemoryPartnerStore) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Partner
	for _, p := range s.partners {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (s *InMemoryPartnerStore) Update(_ context.Context, p *entity.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[p.ID]; !ok {
		return domain.ErrNotFound
	}
	s.partners[p.ID] = p
	return nil
}

// InMemoryUserStore usuarios.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: map[string]*entity.User{}}
}

func (s *InMemoryUserStore) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryUserStore) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id], nil
}

func (s *InMemoryUserStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *InMemoryUserStore) Update(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryUserStore) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.User
	for _, u := range s.users {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}
