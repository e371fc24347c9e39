package repository

import (
	"context"
	"time"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// InvoiceFilter criterios de búsqueda de documentos.
type InvoiceFilter struct {
	CompanyID string
	MoveTypes []entity.MoveType
	States    []string
	DateFrom  time.Time
	DateTo    time.Time
	Limit     int
	Offset    int
}

// InvoiceRepository define el puerto de persistencia para facturas, correcciones y sus líneas.
type InvoiceRepository interface {
	// Create persiste la cabecera y todas las líneas.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update reemplaza la cabecera y las líneas.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// GetByID devuelve el documento con sus líneas o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// ListCorrections devuelve todas las correcciones cuya factura raíz es rootID.
	ListCorrections(ctx context.Context, rootID string) ([]*entity.Invoice, error)
	// GetByIDs devuelve los documentos (sin líneas) indexados por ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Invoice, error)
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, error)
}
