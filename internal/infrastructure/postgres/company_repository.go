package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `
	id, name, vat, street, street2, city, zip, country_code, phone, email, currency_code, lang,
	COALESCE(tax_office_id::text, ''), county, community, post, enable_invoice_rate_change, status,
	created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO companies (id, name, vat, street, street2, city, zip, country_code, phone, email,
			currency_code, lang, tax_office_id, county, community, post, enable_invoice_rate_change, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q,
		c.ID, c.Name, c.VAT, c.Street, c.Street2, c.City, c.Zip, c.CountryCode, c.Phone, c.Email,
		c.CurrencyCode, c.Lang, nullIfEmpty(c.TaxOfficeID), c.County, c.Community, c.Post,
		c.EnableInvoiceRateChange, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID o nil si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// GetByVAT obtiene una empresa por NIP.
func (r *CompanyRepo) GetByVAT(ctx context.Context, vat string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE vat = $1`, vat))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by vat: %w", err)
	}
	return c, nil
}

// Update actualiza una empresa existente.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	const q = `
		UPDATE companies
		SET name = $2, vat = $3, street = $4, street2 = $5, city = $6, zip = $7, country_code = $8,
		    phone = $9, email = $10, currency_code = $11, lang = $12, tax_office_id = $13, county = $14,
		    community = $15, post = $16, enable_invoice_rate_change = $17, status = $18, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, q,
		c.ID, c.Name, c.VAT, c.Street, c.Street2, c.City, c.Zip, c.CountryCode, c.Phone, c.Email,
		c.CurrencyCode, c.Lang, nullIfEmpty(c.TaxOfficeID), c.County, c.Community, c.Post,
		c.EnableInvoiceRateChange, c.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		defaultLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Delete elimina una empresa por ID.
func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return nil
}

func scanCompany(row pgxScanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.VAT, &c.Street, &c.Street2, &c.City, &c.Zip, &c.CountryCode, &c.Phone, &c.Email,
		&c.CurrencyCode, &c.Lang, &c.TaxOfficeID, &c.County, &c.Community, &c.Post,
		&c.EnableInvoiceRateChange, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ── módulos ───────────────────────────────────────────────────────────────────

var _ repository.ModuleRepository = (*ModuleRepo)(nil)

// ModuleRepo módulos SaaS contratados por empresa.
type ModuleRepo struct {
	q Querier
}

// NewModuleRepository construye el repositorio de módulos.
func NewModuleRepository(q Querier) *ModuleRepo {
	return &ModuleRepo{q: q}
}

// IsActive informa si la empresa tiene el módulo activo y sin vencer.
func (r *ModuleRepo) IsActive(ctx context.Context, companyID, moduleName string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM company_modules
			 WHERE company_id  = $1
			   AND module_name = $2
			   AND is_active   = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, q, companyID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}

// HasActiveModule alias de IsActive con la firma que espera el middleware.
func (r *ModuleRepo) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	return r.IsActive(ctx, companyID, moduleName)
}

// Upsert activa, desactiva o prorroga un módulo.
func (r *ModuleRepo) Upsert(ctx context.Context, m *entity.CompanyModule) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO company_modules (id, company_id, module_name, is_active, activated_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), $5, now(), now())
		ON CONFLICT (company_id, module_name) DO UPDATE
		SET is_active = EXCLUDED.is_active, expires_at = EXCLUDED.expires_at, updated_at = now()
		RETURNING id, activated_at, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, m.ID, m.CompanyID, m.ModuleName, m.IsActive, m.ExpiresAt).
		Scan(&m.ID, &m.ActivatedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert company_module: %w", err)
	}
	return nil
}

// ListByCompany módulos de la empresa ordenados por nombre.
func (r *ModuleRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyModule, error) {
	const q = `
		SELECT id, company_id, module_name, is_active, activated_at, expires_at, created_at, updated_at
		FROM company_modules WHERE company_id = $1 ORDER BY module_name`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company_modules: %w", err)
	}
	defer rows.Close()
	var list []*entity.CompanyModule
	for rows.Next() {
		var m entity.CompanyModule
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ModuleName, &m.IsActive, &m.ActivatedAt, &m.ExpiresAt,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company_module: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
