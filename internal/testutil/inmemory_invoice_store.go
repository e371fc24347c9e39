// Package testutil implementaciones en memoria de los puertos de repositorio para tests
// de casos de uso y handlers.
package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore guarda copias de los documentos para que los cambios del caller no se filtren.
type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*entity.Invoice
	order    []string
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{invoices: map[string]*entity.Invoice{}}
}

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	c := *inv
	c.Lines = make([]*entity.InvoiceLine, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lc := *l
		lc.TaxIDs = append([]string(nil), l.TaxIDs...)
		lc.TagIDs = append([]string(nil), l.TagIDs...)
		c.Lines = append(c.Lines, &lc)
	}
	c.AdvanceInvoiceIDs = append([]string(nil), inv.AdvanceInvoiceIDs...)
	return &c
}

func (s *InMemoryInvoiceStore) Create(_ context.Context, inv *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if _, ok := s.invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	for i, l := range inv.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.InvoiceID = inv.ID
		if l.Sequence == 0 {
			l.Sequence = i + 1
		}
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	s.order = append(s.order, inv.ID)
	return nil
}

func (s *InMemoryInvoiceStore) Update(_ context.Context, inv *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, l := range inv.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.InvoiceID = inv.ID
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (s *InMemoryInvoiceStore) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) ListCorrections(_ context.Context, rootID string) ([]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Invoice
	for _, id := range s.order {
		if inv := s.invoices[id]; inv.RefundInvoiceID == rootID {
			out = append(out, header(inv))
		}
	}
	return out, nil
}

func (s *InMemoryInvoiceStore) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*entity.Invoice, len(ids))
	for _, id := range ids {
		if inv, ok := s.invoices[id]; ok {
			out[id] = header(inv)
		}
	}
	return out, nil
}

func (s *InMemoryInvoiceStore) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Invoice
	for _, id := range s.order {
		inv := s.invoices[id]
		if inv.CompanyID != f.CompanyID {
			continue
		}
		if len(f.MoveTypes) > 0 && !slices.Contains(f.MoveTypes, inv.MoveType) {
			continue
		}
		if len(f.States) > 0 && !slices.Contains(f.States, inv.State) {
			continue
		}
		if !f.DateFrom.IsZero() && inv.InvoiceDate.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && inv.InvoiceDate.After(f.DateTo) {
			continue
		}
		out = append(out, header(inv))
	}
	return page(out, f.Limit, f.Offset), nil
}

// header copia sin líneas, como las consultas de cabeceras.
func header(inv *entity.Invoice) *entity.Invoice {
	c := cloneInvoice(inv)
	c.Lines = nil
	return c
}

// All devuelve todos los documentos en orden de alta.
func (s *InMemoryInvoiceStore) All() []*entity.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.order, func(id string, _ int) *entity.Invoice { return cloneInvoice(s.invoices[id]) })
}
