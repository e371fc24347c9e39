package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var (
	_ repository.TaxRepository      = (*TaxRepo)(nil)
	_ repository.CurrencyRepository = (*CurrencyRepo)(nil)
)

// TaxRepo impuestos y grupos de impuestos.
type TaxRepo struct {
	q Querier
}

// NewTaxRepository construye el repositorio de impuestos.
func NewTaxRepository(q Querier) *TaxRepo {
	return &TaxRepo{q: q}
}

// CreateTax persiste un tipo de VAT con sus etiquetas JPK.
func (r *TaxRepo) CreateTax(ctx context.Context, t *entity.Tax) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Exigibility == "" {
		t.Exigibility = entity.TaxExigibilityOnInvoice
	}
	const q = `
		INSERT INTO taxes (id, company_id, name, amount, type_tax_use, tax_group_id, exigibility,
			invoice_base_tag_ids, invoice_tax_tag_ids, refund_base_tag_ids, refund_tax_tag_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q, t.ID, t.CompanyID, t.Name, t.Amount, t.TypeTaxUse, nullIfEmpty(t.TaxGroupID),
		t.Exigibility, orEmpty(t.InvoiceBaseTagIDs), orEmpty(t.InvoiceTaxTagIDs),
		orEmpty(t.RefundBaseTagIDs), orEmpty(t.RefundTaxTagIDs),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert tax: %w", err)
	}
	return nil
}

// CreateGroup persiste un grupo de impuestos.
func (r *TaxRepo) CreateGroup(ctx context.Context, g *entity.TaxGroup) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO tax_groups (id, company_id, name, sequence, preceding_subtotal)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, q, g.ID, g.CompanyID, g.Name, g.Sequence, g.PrecedingSubtotal); err != nil {
		return fmt.Errorf("insert tax_group: %w", err)
	}
	return nil
}

// TaxesByCompany devuelve los impuestos de la empresa indexados por ID.
func (r *TaxRepo) TaxesByCompany(ctx context.Context, companyID string) (map[string]*entity.Tax, error) {
	const q = `
		SELECT id, company_id, name, amount, type_tax_use, COALESCE(tax_group_id::text, ''), exigibility,
		       invoice_base_tag_ids, invoice_tax_tag_ids, refund_base_tag_ids, refund_tax_tag_ids,
		       created_at, updated_at
		FROM taxes WHERE company_id = $1`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list taxes: %w", err)
	}
	defer rows.Close()
	out := map[string]*entity.Tax{}
	for rows.Next() {
		var t entity.Tax
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Amount, &t.TypeTaxUse, &t.TaxGroupID, &t.Exigibility,
			&t.InvoiceBaseTagIDs, &t.InvoiceTaxTagIDs, &t.RefundBaseTagIDs, &t.RefundTaxTagIDs,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tax: %w", err)
		}
		out[t.ID] = &t
	}
	return out, rows.Err()
}

// GroupsByCompany devuelve los grupos de impuestos indexados por ID.
func (r *TaxRepo) GroupsByCompany(ctx context.Context, companyID string) (map[string]*entity.TaxGroup, error) {
	const q = `SELECT id, company_id, name, sequence, preceding_subtotal FROM tax_groups WHERE company_id = $1`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list tax_groups: %w", err)
	}
	defer rows.Close()
	out := map[string]*entity.TaxGroup{}
	for rows.Next() {
		var g entity.TaxGroup
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.Name, &g.Sequence, &g.PrecedingSubtotal); err != nil {
			return nil, fmt.Errorf("scan tax_group: %w", err)
		}
		out[g.ID] = &g
	}
	return out, rows.Err()
}

// CurrencyRepo monedas y tipos de cambio.
type CurrencyRepo struct {
	q Querier
}

// NewCurrencyRepository construye el repositorio de monedas.
func NewCurrencyRepository(q Querier) *CurrencyRepo {
	return &CurrencyRepo{q: q}
}

// GetByCode obtiene la moneda o nil si no existe.
func (r *CurrencyRepo) GetByCode(ctx context.Context, code string) (*entity.Currency, error) {
	var c entity.Currency
	err := r.q.QueryRow(ctx, `SELECT code, symbol, position, digits FROM currencies WHERE code = $1`, code).
		Scan(&c.Code, &c.Symbol, &c.Position, &c.Digits)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency: %w", err)
	}
	return &c, nil
}

// RateAt devuelve el último tipo de cambio con fecha <= date.
func (r *CurrencyRepo) RateAt(ctx context.Context, companyID, code string, date time.Time) (*entity.CurrencyRate, error) {
	const q = `
		SELECT id, company_id, currency_code, date, rate, created_at
		FROM currency_rates
		WHERE company_id = $1 AND currency_code = $2 AND date <= $3
		ORDER BY date DESC
		LIMIT 1`
	var cr entity.CurrencyRate
	err := r.q.QueryRow(ctx, q, companyID, code, date).
		Scan(&cr.ID, &cr.CompanyID, &cr.CurrencyCode, &cr.Date, &cr.Rate, &cr.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency_rate: %w", err)
	}
	return &cr, nil
}

// CreateRate persiste un tipo de cambio; uno por moneda y día.
func (r *CurrencyRepo) CreateRate(ctx context.Context, cr *entity.CurrencyRate) error {
	if cr.ID == "" {
		cr.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO currency_rates (id, company_id, currency_code, date, rate, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at`
	err := r.q.QueryRow(ctx, q, cr.ID, cr.CompanyID, cr.CurrencyCode, cr.Date, cr.Rate).Scan(&cr.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert currency_rate: %w", err)
	}
	return nil
}

// orEmpty evita enviar NULL a columnas TEXT[] NOT NULL.
func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
