package repository

import (
	"context"
	"time"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
)

// EntryQuery criterios de la consulta de ewidencja.
type EntryQuery struct {
	CompanyID   string
	DocTypeName string // JPK_VAT, JPK_V7M_1_2E...
	DateFrom    time.Time
	DateTo      time.Time
	// IncludeDrafts incluye documentos en borrador además de los contabilizados.
	IncludeDrafts bool
	// ExcludeOnPayment descarta líneas de impuestos con exigibilidad al cobro.
	ExcludeOnPayment bool
}

// JPKRepository diccionarios JPK y consulta de líneas etiquetadas.
type JPKRepository interface {
	ListDocumentTypes(ctx context.Context) ([]*entity.DocumentType, error)
	UpsertDocumentType(ctx context.Context, dt *entity.DocumentType) error
	ListGTU(ctx context.Context) ([]*entity.GTU, error)
	UpsertGTU(ctx context.Context, g *entity.GTU) error
	ListTaxOffices(ctx context.Context) ([]*entity.TaxOffice, error)
	GetTaxOffice(ctx context.Context, id string) (*entity.TaxOffice, error)
	// UpsertTaxOffices inserta o actualiza por código; devuelve cuántos se escribieron.
	UpsertTaxOffices(ctx context.Context, offices []entity.TaxOffice) (int, error)
	CreateAccountTag(ctx context.Context, tag *entity.AccountTag) error
	CreateJPKAccountTag(ctx context.Context, m *entity.JPKAccountTag) error
	ListJPKAccountTags(ctx context.Context, docTypeID string) ([]*entity.JPKAccountTag, error)
	// Entries devuelve las líneas contables con etiqueta del tipo de documento indicado.
	Entries(ctx context.Context, q EntryQuery) ([]jpk.Entry, error)
}

// DeclarationRepository persistencia de las declaraciones VAT-7 exportadas.
type DeclarationRepository interface {
	Create(ctx context.Context, d *entity.Declaration) error
	GetByID(ctx context.Context, id string) (*entity.Declaration, error)
	Update(ctx context.Context, d *entity.Declaration) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Declaration, error)
}
