package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var (
	_ repository.JPKRepository         = (*InMemoryJPKStore)(nil)
	_ repository.DeclarationRepository = (*InMemoryDeclarationStore)(nil)
)

// InMemoryJPKStore diccionarios JPK y líneas de ewidencja precargadas por tipo de documento.
type InMemoryJPKStore struct {
	mu          sync.RWMutex
	docTypes    map[string]*entity.DocumentType
	gtu         map[string]*entity.GTU
	offices     map[string]*entity.TaxOffice
	tags        []*entity.AccountTag
	jpkTags     []*entity.JPKAccountTag
	entries     map[string][]jpk.Entry
	lastQueries []repository.EntryQuery
}

func NewInMemoryJPKStore() *InMemoryJPKStore {
	return &InMemoryJPKStore{
		docTypes: map[string]*entity.DocumentType{},
		gtu:      map[string]*entity.GTU{},
		offices:  map[string]*entity.TaxOffice{},
		entries:  map[string][]jpk.Entry{},
	}
}

// SetEntries fija las líneas que devolverá Entries para el tipo de documento.
func (s *InMemoryJPKStore) SetEntries(docTypeName string, entries []jpk.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[docTypeName] = entries
}

// Queries consultas recibidas por Entries.
func (s *InMemoryJPKStore) Queries() []repository.EntryQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]repository.EntryQuery(nil), s.lastQueries...)
}

func (s *InMemoryJPKStore) ListDocumentTypes(_ context.Context) ([]*entity.DocumentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.DocumentType, 0, len(s.docTypes))
	for _, dt := range s.docTypes {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryJPKStore) UpsertDocumentType(_ context.Context, dt *entity.DocumentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.docTypes[dt.Name]; ok {
		dt.ID = existing.ID
	} else if dt.ID == "" {
		dt.ID = uuid.New().String()
	}
	s.docTypes[dt.Name] = dt
	return nil
}

func (s *InMemoryJPKStore) ListGTU(_ context.Context) ([]*entity.GTU, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.GTU, 0, len(s.gtu))
	for _, g := range s.gtu {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryJPKStore) UpsertGTU(_ context.Context, g *entity.GTU) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.gtu[g.Name]; ok {
		g.ID = existing.ID
	} else if g.ID == "" {
		g.ID = uuid.New().String()
	}
	s.gtu[g.Name] = g
	return nil
}

func (s *InMemoryJPKStore) ListTaxOffices(_ context.Context) ([]*entity.TaxOffice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.TaxOffice, 0, len(s.offices))
	for _, o := range s.offices {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *InMemoryJPKStore) GetTaxOffice(_ context.Context, id string) (*entity.TaxOffice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.offices {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (s *InMemoryJPKStore) UpsertTaxOffices(_ context.Context, offices []entity.TaxOffice) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range offices {
		o := offices[i]
		if existing, ok := s.offices[o.Code]; ok {
			o.ID = existing.ID
		} else if o.ID == "" {
			o.ID = uuid.New().String()
		}
		s.offices[o.Code] = &o
	}
	return len(offices), nil
}

func (s *InMemoryJPKStore) CreateAccountTag(_ context.Context, tag *entity.AccountTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	s.tags = append(s.tags, tag)
	return nil
}

func (s *InMemoryJPKStore) CreateJPKAccountTag(_ context.Context, m *entity.JPKAccountTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	s.jpkTags = append(s.jpkTags, m)
	return nil
}

func (s *InMemoryJPKStore) ListJPKAccountTags(_ context.Context, docTypeID string) ([]*entity.JPKAccountTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.JPKAccountTag
	for _, m := range s.jpkTags {
		if m.DocumentTypeID == docTypeID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *InMemoryJPKStore) Entries(_ context.Context, q repository.EntryQuery) ([]jpk.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQueries = append(s.lastQueries, q)
	return append([]jpk.Entry(nil), s.entries[q.DocTypeName]...), nil
}

// InMemoryDeclarationStore declaraciones VAT-7.
type InMemoryDeclarationStore struct {
	mu    sync.RWMutex
	decls map[string]*entity.Declaration
}

func NewInMemoryDeclarationStore() *InMemoryDeclarationStore {
	return &InMemoryDeclarationStore{decls: map[string]*entity.Declaration{}}
}

func cloneDeclaration(d *entity.Declaration) *entity.Declaration {
	c := *d
	c.Ints = make(map[string]int64, len(d.Ints))
	for k, v := range d.Ints {
		c.Ints[k] = v
	}
	c.Bools = make(map[string]bool, len(d.Bools))
	for k, v := range d.Bools {
		c.Bools[k] = v
	}
	c.SourceXML = append([]byte(nil), d.SourceXML...)
	return &c
}

func (s *InMemoryDeclarationStore) Create(_ context.Context, d *entity.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt, d.UpdatedAt = time.Now(), time.Now()
	s.decls[d.ID] = cloneDeclaration(d)
	return nil
}

func (s *InMemoryDeclarationStore) GetByID(_ context.Context, id string) (*entity.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decls[id]
	if !ok {
		return nil, nil
	}
	return cloneDeclaration(d), nil
}

func (s *InMemoryDeclarationStore) Update(_ context.Context, d *entity.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decls[d.ID]; !ok {
		return domain.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	s.decls[d.ID] = cloneDeclaration(d)
	return nil
}

func (s *InMemoryDeclarationStore) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Declaration
	for _, d := range s.decls {
		if d.CompanyID == companyID {
			out = append(out, cloneDeclaration(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return page(out, limit, offset), nil
}
